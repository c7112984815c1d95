package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventhub/internal/core/auth"
	"eventhub/internal/domain"
	"eventhub/internal/domain/domaintest"
	"eventhub/internal/service"
	"eventhub/internal/transport/http/handler"
	mdw "eventhub/internal/transport/http/middleware"
	"eventhub/internal/transport/http/router"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testApp struct {
	engine *gin.Engine
	jwter  *auth.JWTer
	users  *domaintest.UserRepo
	events *domaintest.EventRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := domaintest.NewUserRepo()
	events := domaintest.NewEventRepo()
	jwter := &auth.JWTer{Secret: []byte("handler-test-secret"), Issuer: "eventhub-test", TTL: time.Hour}

	userSvc := service.NewUserService(users, jwter)
	eventSvc := service.NewEventService(events, 7)
	rankingSvc := service.NewRankingService(events, nil, 5, 0)

	uh := handler.NewUserHandler(userSvc)
	eh := handler.NewEventHandler(eventSvc, rankingSvc, mdw.AuthJWT(jwter, users, ""), 7)

	return &testApp{
		engine: router.NewAPIEngine(zap.NewNop(), uh, eh),
		jwter:  jwter,
		users:  users,
		events: events,
	}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

// registerAndLogin creates an account through the public endpoints and
// returns a usable bearer token.
func (a *testApp) registerAndLogin(t *testing.T, username, email string) string {
	t.Helper()

	status, _ := a.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"username": username, "email": email, "password": "s3cretpw",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := a.do(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email": email, "password": "s3cretpw",
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (a *testApp) createEvent(t *testing.T, token string, capacity int, date time.Time) string {
	t.Helper()

	status, env := a.do(t, http.MethodPost, "/api/events/create", token, gin.H{
		"name": "gophercon", "date": date.Format(time.RFC3339), "capacity": capacity, "price": 25,
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "Event created successfully", env.Msg)

	var e domain.Event
	require.NoError(t, json.Unmarshal(env.Data, &e))
	require.NotEmpty(t, e.ID)
	return e.ID
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	// Short password and malformed email never reach the service.
	status, _ := app.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "short",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = app.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"username": "alice", "email": "not-an-email", "password": "s3cretpw",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestUserDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.registerAndLogin(t, "alice", "alice@example.com")

	// Deliberately 200, not 4xx: status codes must not leak which emails exist.
	status, env := app.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"username": "impostor", "email": "alice@example.com", "password": "otherpw1",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Email already registered", env.Msg)
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)
	app.registerAndLogin(t, "alice", "alice@example.com")

	status, env := app.do(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email": "nobody@example.com", "password": "whatever1",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Email not registered", env.Msg)

	status, env = app.do(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email": "alice@example.com", "password": "wrongpass",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid credentials", env.Msg)
}

func TestAuthGate(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodGet, "/api/events/", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Token header not found", env.Msg)

	status, env = app.do(t, http.MethodGet, "/api/events/", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid token", env.Msg)
}

func TestAuthRejectsDeactivatedAccount(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, "alice", "alice@example.com")

	claims, err := app.jwter.Parse(token)
	require.NoError(t, err)

	status, _ := app.do(t, http.MethodPatch, "/api/users/delete/"+claims.UID, "", nil)
	require.Equal(t, http.StatusOK, status)

	// The token is still cryptographically valid but the account is gone.
	status, env := app.do(t, http.MethodGet, "/api/events/", token, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "User not found", env.Msg)
}

func TestDeactivateUnknownUser(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPatch, "/api/users/delete/missing", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "User not found", env.Msg)
}

func TestCreateEventValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, "alice", "alice@example.com")

	status, _ := app.do(t, http.MethodPost, "/api/events/create", token, gin.H{
		"name": "bad", "date": time.Now().AddDate(0, 1, 0).Format(time.RFC3339), "capacity": -1,
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = app.do(t, http.MethodPost, "/api/events/create", token, gin.H{
		"date": time.Now().AddDate(0, 1, 0).Format(time.RFC3339), "capacity": 5,
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestEventRegistrationFlow(t *testing.T) {
	app := newTestApp(t)
	alice := app.registerAndLogin(t, "alice", "alice@example.com")
	bob := app.registerAndLogin(t, "bob", "bob@example.com")
	carol := app.registerAndLogin(t, "carol", "carol@example.com")

	eventID := app.createEvent(t, alice, 2, time.Now().AddDate(0, 1, 0))

	status, env := app.do(t, http.MethodPost, "/api/events/register/"+eventID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Registered successfully", env.Msg)

	status, env = app.do(t, http.MethodPost, "/api/events/register/"+eventID, alice, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "You have already registered for this event", env.Msg)

	status, _ = app.do(t, http.MethodPost, "/api/events/register/"+eventID, bob, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = app.do(t, http.MethodPost, "/api/events/register/"+eventID, carol, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Event is sold out", env.Msg)

	status, env = app.do(t, http.MethodPost, "/api/events/register/missing", alice, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Event not found", env.Msg)

	// Listing resolves attendee identities.
	status, env = app.do(t, http.MethodGet, "/api/events/", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var events []domain.Event
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	require.Equal(t, 2, events[0].AttendeeCount)
	require.Len(t, events[0].Attendees, 2)

	// Registered view reflects the join, not a second write.
	status, env = app.do(t, http.MethodGet, "/api/events/registered", bob, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	require.Equal(t, eventID, events[0].ID)

	status, env = app.do(t, http.MethodGet, "/api/events/registered", carol, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Empty(t, events)
}

func TestCancelGates(t *testing.T) {
	app := newTestApp(t)
	alice := app.registerAndLogin(t, "alice", "alice@example.com")
	bob := app.registerAndLogin(t, "bob", "bob@example.com")

	farOut := app.createEvent(t, alice, 5, time.Now().AddDate(0, 1, 0))

	status, env := app.do(t, http.MethodDelete, "/api/events/cancel/"+farOut, bob, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Only the event creator can cancel this event", env.Msg)

	_, _ = app.do(t, http.MethodPost, "/api/events/register/"+farOut, bob, nil)
	status, env = app.do(t, http.MethodDelete, "/api/events/cancel/"+farOut, alice, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Cannot cancel event with registered users", env.Msg)

	soon := app.createEvent(t, alice, 5, time.Now().AddDate(0, 0, 3))
	status, env = app.do(t, http.MethodDelete, "/api/events/cancel/"+soon, alice, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Cannot cancel event within 7 days", env.Msg)
}

func TestCancelSuccess(t *testing.T) {
	app := newTestApp(t)
	alice := app.registerAndLogin(t, "alice", "alice@example.com")

	eventID := app.createEvent(t, alice, 5, time.Now().AddDate(0, 0, 10))

	status, env := app.do(t, http.MethodDelete, "/api/events/cancel/"+eventID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Event cancelled successfully", env.Msg)

	// The cancelled event is invisible to every subsequent operation.
	status, env = app.do(t, http.MethodPost, "/api/events/register/"+eventID, alice, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Event not found", env.Msg)

	status, env = app.do(t, http.MethodGet, "/api/events/", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var events []domain.Event
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Empty(t, events)
}

func TestCapacityFill(t *testing.T) {
	app := newTestApp(t)
	alice := app.registerAndLogin(t, "alice", "alice@example.com")

	eventID := app.createEvent(t, alice, 4, time.Now().AddDate(0, 1, 0))
	_, _ = app.do(t, http.MethodPost, "/api/events/register/"+eventID, alice, nil)

	status, env := app.do(t, http.MethodGet, "/api/events/capacity/"+eventID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	var data struct {
		PercentageFilled float64 `json:"percentageFilled"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 25.0, data.PercentageFilled)

	status, env = app.do(t, http.MethodGet, "/api/events/capacity/missing", alice, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Event not found", env.Msg)
}

func TestTopEvents(t *testing.T) {
	app := newTestApp(t)
	alice := app.registerAndLogin(t, "alice", "alice@example.com")

	var attendees []string
	for i := 0; i < 3; i++ {
		attendees = append(attendees, app.registerAndLogin(t, fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@example.com", i)))
	}

	// Seven events; event i gets i%4 attendees, so ranks are deterministic.
	date := time.Now().AddDate(0, 1, 0)
	for i := 0; i < 7; i++ {
		id := app.createEvent(t, alice, 10, date)
		for a := 0; a < i%4; a++ {
			status, _ := app.do(t, http.MethodPost, "/api/events/register/"+id, attendees[a], nil)
			require.Equal(t, http.StatusOK, status)
		}
	}

	status, env := app.do(t, http.MethodGet, "/api/events/top5", alice, nil)
	require.Equal(t, http.StatusOK, status)

	var top []domain.RankedEvent
	require.NoError(t, json.Unmarshal(env.Data, &top))
	require.Len(t, top, 5)
	for i := 1; i < len(top); i++ {
		require.GreaterOrEqual(t, top[i-1].AttendeesCount, top[i].AttendeesCount)
	}
	require.Equal(t, 3, top[0].AttendeesCount)
}
