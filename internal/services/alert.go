package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/floodwatch/apiserver/internal/logging"
	"github.com/floodwatch/apiserver/internal/notify"
	"github.com/floodwatch/apiserver/types"
)

const (
	dateLayout = "2006-01-02"

	minForecastDays = 1
	maxForecastDays = 7

	// Alerts below this probability are treated as noise and rejected.
	minAlertPercentage = 60
	maxAlertPercentage = 100

	alertTemplate = "Flood alert: %.0f%% chance of flooding around %s on %s. Please move valuables to higher ground and follow local guidance."
)

// UserDirectory is the slice of user persistence the alert dispatcher needs.
type UserDirectory interface {
	SearchByLocation(ctx context.Context, location string) ([]types.User, error)
}

// AlertRequest is a validated-on-entry broadcast request.
type AlertRequest struct {
	Location   string
	Percentage float64
	Date       string
}

// AlertService targets registered users by fuzzy location match and
// broadcasts a flood warning to each of them, best-effort.
type AlertService struct {
	users     UserDirectory
	messenger notify.Messenger
	log       logging.Logger

	// now is swappable in tests.
	now func() time.Time
}

func NewAlertService(users UserDirectory, messenger notify.Messenger, log logging.Logger) *AlertService {
	return &AlertService{
		users:     users,
		messenger: messenger,
		log:       log,
		now:       time.Now,
	}
}

// NotifyUsers validates the request, selects recipients, and sends one
// SMS per matched user with a phone number on file. It returns the
// number of attempted sends; individual provider failures are logged
// and skipped rather than aborting the batch.
//
// Validation happens before any database query: the forecast date must
// be 1–7 whole calendar days ahead, and the probability must be in
// [60, 100].
func (s *AlertService) NotifyUsers(ctx context.Context, req AlertRequest) (int, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return 0, validationErrorf("location is required")
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return 0, validationErrorf("date must be in YYYY-MM-DD format")
	}
	days := daysAhead(s.now().UTC(), date)
	if days < minForecastDays || days > maxForecastDays {
		return 0, validationErrorf(fmt.Sprintf(
			"date must be between %d and %d days ahead", minForecastDays, maxForecastDays))
	}

	if req.Percentage < minAlertPercentage || req.Percentage > maxAlertPercentage {
		return 0, validationErrorf(fmt.Sprintf(
			"percentage must be between %d and %d", minAlertPercentage, maxAlertPercentage))
	}

	users, err := s.users.SearchByLocation(ctx, location)
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, ErrNoRecipients
	}

	message := fmt.Sprintf(alertTemplate, req.Percentage, location, date.Format(dateLayout))

	attempted := 0
	for _, user := range users {
		phone := strings.TrimSpace(user.PhoneNumber)
		if phone == "" {
			continue
		}
		attempted++
		if err := s.messenger.Send(ctx, phone, message); err != nil {
			s.log.Error(ctx, "alert send failed", "user_id", user.ID, "error", err)
		}
	}

	s.log.Info(ctx, "alert broadcast finished",
		"location", location, "matched", len(users), "attempted", attempted)
	return attempted, nil
}

// daysAhead computes the whole-calendar-day difference between now and
// the target date. Both sides are truncated to midnight UTC, so the
// result does not depend on the time of day the request arrives.
func daysAhead(now, date time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today).Hours() / 24)
}
