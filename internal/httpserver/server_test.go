package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/robalobadob/wordle-helper/internal/store"
	"github.com/robalobadob/wordle-helper/internal/tracker"
)

const testSecret = "test-secret"

type client struct {
	t     *testing.T
	srv   *Server
	id    string
	token string
}

func newClient(t *testing.T, body string) *client {
	t.Helper()
	srv := New(store.NewMemoryStore(), Options{JWTSecret: testSecret, CookieName: "sid"})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodPost, "/sessions", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		SessionID string `json:"sessionId"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.SessionID)
	require.NotEmpty(t, res.Token)
	c.id, c.token = res.SessionID, res.Token
	return c
}

func (c *client) do(method, path, body, token string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.srv.Router().ServeHTTP(rec, req)
	return rec
}

// call hits a board route with the session token.
func (c *client) call(method, suffix, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(method, "/sessions/"+c.id+suffix, body, c.token)
}

type boardBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Enforce bool   `json:"enforce"`
	Tag     string `json:"tag"`
	Board   struct {
		Rows [][]struct {
			Letter string `json:"letter"`
			Tag    string `json:"tag"`
			Ghost  string `json:"ghost"`
		} `json:"rows"`
		ActiveRow  int               `json:"activeRow"`
		CanAddRow  bool              `json:"canAddRow"`
		Cycle      string            `json:"cycle"`
		Positions  map[string]string `json:"positions"`
		Exclusions map[string][]int  `json:"exclusions"`
		MustUse    []string          `json:"mustUse"`
	} `json:"board"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) boardBody {
	t.Helper()
	var b boardBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

func (c *client) typeWord(word string) {
	c.t.Helper()
	for _, l := range word {
		rec := c.call(http.MethodPost, "/keys", `{"key":"`+string(l)+`"}`)
		require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestDiagnostics(t *testing.T) {
	c := newClient(t, "")

	rec := c.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestCreateSession(t *testing.T) {
	t.Run("sets the token cookie", func(t *testing.T) {
		srv := New(store.NewMemoryStore(), Options{JWTSecret: testSecret, CookieName: "sid"})
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		rec := httptest.NewRecorder()

		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sid", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("applies options", func(t *testing.T) {
		c := newClient(t, `{"enforce":true,"cycle":"absent-first"}`)

		b := decode(t, c.call(http.MethodGet, "", ""))

		assert.True(t, b.Enforce)
		assert.Equal(t, "absent-first", b.Board.Cycle)
		assert.Len(t, b.Board.Rows, 1)
	})

	t.Run("rejects an unknown cycle", func(t *testing.T) {
		srv := New(store.NewMemoryStore(), Options{})
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"cycle":"zigzag"}`))
		rec := httptest.NewRecorder()

		srv.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuth(t *testing.T) {
	c := newClient(t, "")
	other := newClient(t, "")

	t.Run("missing token", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/sessions/"+c.id, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token for another session", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/sessions/"+c.id, "", other.token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sid": c.id,
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("wrong"))
		require.NoError(t, err)

		rec := c.do(http.MethodGet, "/sessions/"+c.id, "", forged)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cookie works like a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sessions/"+c.id, nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: c.token})
		rec := httptest.NewRecorder()

		c.srv.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBoardFlow(t *testing.T) {
	// Given: CRANE typed with enforcement on
	c := newClient(t, `{"enforce":true}`)
	c.typeWord("crane")

	// When: C is marked correct and R present, then a row is added
	b := decode(t, c.call(http.MethodPost, "/cells/0/0/cycle", ""))
	assert.Equal(t, "correct", b.Tag)
	c.call(http.MethodPost, "/cells/0/1/cycle", "")
	b = decode(t, c.call(http.MethodPost, "/cells/0/1/cycle", ""))
	assert.Equal(t, "present", b.Tag)
	b = decode(t, c.call(http.MethodPost, "/rows", ""))

	// Then: the constraints are derived and the ghost shows in the new row
	assert.Equal(t, map[string]string{"0": "c"}, b.Board.Positions)
	assert.Equal(t, map[string][]int{"r": {1}}, b.Board.Exclusions)
	assert.Equal(t, []string{"r"}, b.Board.MustUse)
	assert.Equal(t, 1, b.Board.ActiveRow)
	assert.Equal(t, "c", b.Board.Rows[1][0].Ghost)

	t.Run("conflicting key is a 409 notice", func(t *testing.T) {
		rec := c.call(http.MethodPost, "/keys", `{"key":"x"}`)

		require.Equal(t, http.StatusConflict, rec.Code)
		b := decode(t, rec)
		assert.Equal(t, "position_conflict", b.Error)
		assert.Equal(t, "Position 1 must contain 'C'", b.Message)
		assert.Empty(t, b.Board.Rows[1][0].Letter)
	})

	t.Run("check reports without changing anything", func(t *testing.T) {
		var res checkRes
		rec := c.call(http.MethodGet, "/check?letter=r&position=1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.False(t, res.Allowed)
		assert.Equal(t, "exclusion_conflict", res.Error)

		rec = c.call(http.MethodGet, "/check?letter=r&position=2", "")
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.True(t, res.Allowed)

		rec = c.call(http.MethodGet, "/check?letter=r&position=x", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("drop and clear", func(t *testing.T) {
		rec := c.call(http.MethodPost, "/cells/1/4/drop", `{"letter":"e"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "e", decode(t, rec).Board.Rows[1][4].Letter)

		rec = c.call(http.MethodPost, "/cells/1/4/drop", `{"letter":"s"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "cell_occupied", decode(t, rec).Error)

		rec = c.call(http.MethodPost, "/cells/1/4/clear", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode(t, rec).Board.Rows[1][4].Letter)
	})

	t.Run("bad cell and letter are 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, c.call(http.MethodPost, "/cells/9/0/cycle", "").Code)
		assert.Equal(t, http.StatusBadRequest, c.call(http.MethodPost, "/cells/a/0/cycle", "").Code)
		assert.Equal(t, http.StatusBadRequest, c.call(http.MethodPost, "/keys", `{"key":"7"}`).Code)
		assert.Equal(t, http.StatusBadRequest, c.call(http.MethodPost, "/keys", `{`).Code)
	})

	t.Run("settings", func(t *testing.T) {
		rec := c.call(http.MethodPut, "/settings", `{"enforce":false,"cycle":"absent-first"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		b := decode(t, rec)
		assert.False(t, b.Enforce)
		assert.Equal(t, "absent-first", b.Board.Cycle)

		rec = c.call(http.MethodPut, "/settings", `{"cycle":"sideways"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("export", func(t *testing.T) {
		rec := c.call(http.MethodGet, "/export.xlsx", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		v, err := f.GetCellValue("Board", "B1")
		require.NoError(t, err)
		assert.Equal(t, "R", v)
	})

	t.Run("reset keeps settings", func(t *testing.T) {
		b := decode(t, c.call(http.MethodPost, "/reset", ""))

		assert.Len(t, b.Board.Rows, 1)
		assert.Empty(t, b.Board.Positions)
		assert.Equal(t, "absent-first", b.Board.Cycle)
	})
}

func TestRowCapacity(t *testing.T) {
	c := newClient(t, "")
	for i := 1; i < tracker.MaxRows; i++ {
		require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/rows", "").Code)
	}

	rec := c.call(http.MethodPost, "/keys", `{"key":"Enter"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	b := decode(t, rec)
	assert.Equal(t, "row_capacity", b.Error)
	assert.Equal(t, "Maximum number of rows reached!", b.Message)
	assert.Len(t, b.Board.Rows, tracker.MaxRows)
	assert.False(t, b.Board.CanAddRow)
}

func TestDeleteSession(t *testing.T) {
	c := newClient(t, "")

	rec := c.call(http.MethodDelete, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, c.call(http.MethodGet, "", "").Code)
	assert.Equal(t, http.StatusNotFound, c.call(http.MethodPost, "/rows", "").Code)
	assert.Equal(t, http.StatusNotFound, c.call(http.MethodDelete, "", "").Code)
}

func TestDeleteSession_WaitsForMutation(t *testing.T) {
	// Given: a mutation holding the board lock
	c := newClient(t, "")
	c.srv.mu.Lock()

	// When: the session is deleted meanwhile
	done := make(chan int, 1)
	go func() {
		done <- c.call(http.MethodDelete, "", "").Code
	}()

	// Then: the delete only lands once the mutation has saved
	select {
	case code := <-done:
		c.srv.mu.Unlock()
		t.Fatalf("delete finished with %d while the board was locked", code)
	case <-time.After(50 * time.Millisecond):
	}
	c.srv.mu.Unlock()

	select {
	case code := <-done:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("delete never finished")
	}
	assert.Equal(t, http.StatusNotFound, c.call(http.MethodGet, "", "").Code)
}
