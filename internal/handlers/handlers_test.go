package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/floodwatch/apiserver/internal/auth"
	"github.com/floodwatch/apiserver/internal/logging"
	"github.com/floodwatch/apiserver/internal/services"
	"github.com/floodwatch/apiserver/internal/store"
	"github.com/floodwatch/apiserver/types"
)

// Shared fakes and fixture wiring for the handler tests.

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) SearchByLocation(ctx context.Context, location string) ([]types.User, error) {
	matched := []types.User{}
	needle := strings.ToLower(location)
	for _, user := range f.users {
		if strings.Contains(strings.ToLower(user.Location), needle) {
			matched = append(matched, user)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	users := []types.User{}
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if _, err := f.GetByEmail(ctx, user.Email); err == nil {
		return types.User{}, store.ErrDuplicate
	}
	user.ID = f.nextID
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	for id, existing := range f.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = user
	return user, nil
}

type fakeReportRepo struct {
	reports []types.Report
	nextID  int
}

func (f *fakeReportRepo) Create(ctx context.Context, report types.Report) (types.Report, error) {
	f.nextID++
	report.ID = f.nextID
	report.CreatedAt = time.Now()
	f.reports = append(f.reports, report)
	return report, nil
}

func (f *fakeReportRepo) List(ctx context.Context) ([]types.Report, error) {
	return f.reports, nil
}

type fakeUploader struct {
	uploaded []string
}

func (f *fakeUploader) UploadImage(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", nil
	}
	f.uploaded = append(f.uploaded, localPath)
	return "http://assets.local/test-bucket/images/fake.jpg", nil
}

type fakeMailer struct {
	to      []string
	bodies  []string
	failure error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.to = append(f.to, to)
	f.bodies = append(f.bodies, body)
	return f.failure
}

type fakeMessenger struct {
	sent    []string
	failFor map[string]error
}

func (f *fakeMessenger) Send(ctx context.Context, phoneNumber, message string) error {
	f.sent = append(f.sent, phoneNumber)
	if err, ok := f.failFor[phoneNumber]; ok {
		return err
	}
	return nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fixture struct {
	router    *chi.Mux
	userRepo  *fakeUserRepo
	reports   *fakeReportRepo
	uploader  *fakeUploader
	mailer    *fakeMailer
	messenger *fakeMessenger
	tokens    *auth.TokenManager
}

func newFixture() *fixture {
	userRepo := newFakeUserRepo()
	reportRepo := &fakeReportRepo{}
	uploader := &fakeUploader{}
	mailer := &fakeMailer{}
	messenger := &fakeMessenger{}
	log := discardLogger()

	userService := services.NewUserService(userRepo)
	reportService := services.NewReportService(reportRepo)
	alertService := services.NewAlertService(userRepo, messenger, log)

	tokens := auth.NewTokenManager("test-secret", time.Hour, 15*time.Minute)
	authMiddleware := RequireAuth(tokens)

	authHandler := NewAuthHandler(userService, tokens, uploader, mailer, "http://app.local", log)
	reportHandler := NewReportHandler(reportService, uploader, log)
	adminHandler := NewAdminHandler(userService, reportService, log)
	alertHandler := NewAlertHandler(alertService, log)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Post("/register", authHandler.Register)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, authHandler, authMiddleware)
	})
	router.Route("/alerts", func(r chi.Router) {
		AlertRouter(r, alertHandler)
	})
	router.Route("/reports", func(r chi.Router) {
		ReportRouter(r, reportHandler, authMiddleware)
	})
	router.Route("/admin", func(r chi.Router) {
		AdminRouter(r, adminHandler, authMiddleware)
	})

	return &fixture{
		router:    router,
		userRepo:  userRepo,
		reports:   reportRepo,
		uploader:  uploader,
		mailer:    mailer,
		messenger: messenger,
		tokens:    tokens,
	}
}

func (f *fixture) addUser(user types.User) types.User {
	created, err := f.userRepo.Create(context.Background(), user)
	if err != nil {
		panic(err)
	}
	return created
}

func (f *fixture) tokenFor(user types.User) string {
	token, err := f.tokens.IssueSession(user)
	if err != nil {
		panic(err)
	}
	return token
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
