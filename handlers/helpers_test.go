package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	handler "webapp/handlers"
	"webapp/middleware"
	"webapp/models"
	"webapp/repository"
	"webapp/router"
)

type fakeUserStore struct {
	users map[string]*models.User

	findCalls   int
	vanishAfter int // FindByEmail stops finding after this many calls (0 = never)
	findErr     error
	createErr   error
	updateErr   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.findCalls++
	if f.vanishAfter > 0 && f.findCalls > f.vanishAfter {
		return nil, repository.ErrNotFound
	}
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[u.Email]; ok {
		return repository.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.AccountCreated = now
	u.AccountUpdated = now
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

type fakeImageStore struct {
	rows []models.Image

	findErr   error
	createErr error
	deleteErr error
}

func (f *fakeImageStore) FindLatestByUser(_ context.Context, userID string) (*models.Image, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeImageStore) Create(_ context.Context, image *models.Image) error {
	if f.createErr != nil {
		return f.createErr
	}
	image.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, *image)
	return nil
}

func (f *fakeImageStore) Delete(_ context.Context, image *models.Image) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.rows {
		if f.rows[i].ID == image.ID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

const testBucket = "test-bucket"

type fakeObjectStore struct {
	objects map[string][]byte

	uploadErr error
	deleteErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) ObjectKey(userID, imageID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", userID, imageID, fileName)
}

func (f *fakeObjectStore) ObjectURL(key string) string {
	return testBucket + "/" + key
}

func (f *fakeObjectStore) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, testBucket+"/")
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error {
	return f.err
}

// env is a full app wired against fakes, routed exactly like production.
type env struct {
	app    *fiber.App
	users  *fakeUserStore
	images *fakeImageStore
	store  *fakeObjectStore
	db     *fakePinger
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	e := &env{
		users:  newFakeUserStore(),
		images: &fakeImageStore{},
		store:  newFakeObjectStore(),
		db:     &fakePinger{},
	}

	e.app = fiber.New()
	router.SetupRoutes(e.app, router.Deps{
		Users:  &handler.UserHandler{Users: e.users, Log: log},
		Images: &handler.ImageHandler{Images: e.images, Store: e.store, Log: log},
		Health: &handler.HealthHandler{DB: e.db, Log: log},
		Auth:   middleware.BasicAuth(e.users, log),
	})
	return e
}

func (e *env) seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &models.User{FirstName: "A", LastName: "B", Email: email, Password: string(hash)}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func jsonReq(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

func withBasicAuth(req *http.Request, email, password string) *http.Request {
	req.Header.Set(fiber.HeaderAuthorization,
		"Basic "+base64.StdEncoding.EncodeToString([]byte(email+":"+password)))
	return req
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// multipartFile builds a one-file multipart body with an explicit part
// content type, the way browsers send uploads.
func multipartFile(t *testing.T, field, filename, contentType string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}
