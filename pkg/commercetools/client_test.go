package commercetools_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bjornsallarp/commercetools-go-sdk/pkg/commercetools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAuthServer serves the client_credentials grant used by the tests.
func newAuthServer(t *testing.T, token string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)

		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", username)
		assert.Equal(t, "client-secret", password)

		err := r.ParseForm()
		require.NoError(t, err)
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "manage_project:my-project", r.Form.Get("scope"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
}

func newClient(t *testing.T, apiURL, authURL string, opts ...commercetools.Option) *commercetools.Client {
	t.Helper()

	client, err := commercetools.New(&commercetools.Config{
		APIURL:       apiURL,
		AuthURL:      authURL,
		ProjectKey:   "my-project",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, opts...)
	require.NoError(t, err)

	return client
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Get(t *testing.T) {
	t.Parallel()
	t.Run("decodes a typed model", func(t *testing.T) {
		t.Parallel()

		authServer := newAuthServer(t, "test-token")
		defer authServer.Close()

		apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/my-project/orders/order-1", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			_, _ = w.Write([]byte(`{"id":"order-1","orderNumber":"1001","totalPrice":{"centAmount":4200}}`))
		}))
		defer apiServer.Close()

		client := newClient(t, apiServer.URL, authServer.URL)

		resp, err := commercetools.Get[order](context.Background(), client, "/orders/order-1", nil)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 200, resp.StatusCode)
		require.NotNil(t, resp.Result)
		assert.Equal(t, "order-1", resp.Result.ID)
		assert.Equal(t, int64(4200), resp.Result.TotalCents)
	})

	t.Run("decodes a raw JSON container directly", func(t *testing.T) {
		t.Parallel()

		authServer := newAuthServer(t, "test-token")
		defer authServer.Close()

		apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"1"}`))
		}))
		defer apiServer.Close()

		client := newClient(t, apiServer.URL, authServer.URL)

		resp, err := commercetools.Get[map[string]interface{}](context.Background(), client, "orders/1", nil)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Result)
		assert.Equal(t, "1", (*resp.Result)["id"])
	})

	t.Run("normalizes endpoint and encodes query", func(t *testing.T) {
		t.Parallel()

		authServer := newAuthServer(t, "test-token")
		defer authServer.Close()

		apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/my-project/orders", r.URL.Path)
			assert.Equal(t, "limit=5", r.URL.RawQuery)
			_, _ = w.Write([]byte(`{"results":[]}`))
		}))
		defer apiServer.Close()

		client := newClient(t, apiServer.URL, authServer.URL)

		resp, err := commercetools.Get[map[string]interface{}](context.Background(), client, "orders",
			map[string][]string{"limit": {"5"}})
		require.NoError(t, err)
		assert.True(t, resp.Success)
	})

	t.Run("404 produces a failed response with parsed errors", func(t *testing.T) {
		t.Parallel()

		authServer := newAuthServer(t, "test-token")
		defer authServer.Close()

		apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"code":"not_found","message":"x"}]}`))
		}))
		defer apiServer.Close()

		client := newClient(t, apiServer.URL, authServer.URL)

		resp, err := commercetools.Get[order](context.Background(), client, "/orders/missing", nil)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Nil(t, resp.Result)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "not_found", resp.Errors[0].Code)
		assert.Equal(t, "x", resp.Errors[0].Message)
	})

	t.Run("token failure short-circuits without calling the API", func(t *testing.T) {
		t.Parallel()

		authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"bad secret"}`))
		}))
		defer authServer.Close()

		apiRequests := 0

		apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiRequests++

			w.WriteHeader(http.StatusOK)
		}))
		defer apiServer.Close()

		client := newClient(t, apiServer.URL, authServer.URL)

		resp, err := commercetools.Get[order](context.Background(), client, "/orders", nil)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 0, resp.StatusCode)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, commercetools.ErrorCodeNoToken, resp.Errors[0].Code)
		assert.Equal(t, "Could not retrieve token", resp.Errors[0].Message)
		assert.Equal(t, 0, apiRequests)
	})

	t.Run("transport failure is a hard error", func(t *testing.T) {
		t.Parallel()

		authServer := newAuthServer(t, "test-token")
		defer authServer.Close()

		apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		apiServer.Close() // connection refused

		client := newClient(t, apiServer.URL, authServer.URL)

		resp, err := commercetools.Get[order](context.Background(), client, "/orders", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestClient_Post(t *testing.T) {
	t.Parallel()

	authServer := newAuthServer(t, "test-token")
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/my-project/carts", r.URL.Path)
		assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))

		var body map[string]string

		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "EUR", body["currency"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"cart-1"}`))
	}))
	defer apiServer.Close()

	client := newClient(t, apiServer.URL, authServer.URL)

	resp, err := commercetools.Post[map[string]interface{}](context.Background(), client, "/carts",
		map[string]string{"currency": "EUR"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 201, resp.StatusCode)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "cart-1", (*resp.Result)["id"])
}

func TestClient_Delete(t *testing.T) {
	t.Parallel()

	authServer := newAuthServer(t, "test-token")
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/my-project/carts/cart-1", r.URL.Path)
		assert.Equal(t, "version=3", r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"id":"cart-1"}`))
	}))
	defer apiServer.Close()

	client := newClient(t, apiServer.URL, authServer.URL)

	resp, err := commercetools.Delete[map[string]interface{}](context.Background(), client, "/carts/cart-1",
		map[string][]string{"version": {"3"}})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClient_TokenReuse(t *testing.T) {
	t.Parallel()

	tokenRequests := 0

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer apiServer.Close()

	client := newClient(t, apiServer.URL, authServer.URL)

	for i := 0; i < 3; i++ {
		resp, err := commercetools.Get[map[string]interface{}](context.Background(), client, "/orders", nil)
		require.NoError(t, err)
		assert.True(t, resp.Success)
	}

	// A valid token is reused across calls
	assert.Equal(t, 1, tokenRequests)
}

func TestClient_FetchToken(t *testing.T) {
	t.Parallel()

	authServer := newAuthServer(t, "abc")
	defer authServer.Close()

	client := newClient(t, "https://api.example.com", authServer.URL)

	token, err := client.FetchToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)
	assert.False(t, token.ExpiresAt.IsZero())
}

func TestClient_ActivatorCacheDisabled(t *testing.T) {
	t.Parallel()

	authServer := newAuthServer(t, "test-token")
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"order-1","orderNumber":"1001"}`))
	}))
	defer apiServer.Close()

	client := newClient(t, apiServer.URL, authServer.URL, commercetools.WithoutActivatorCache())

	for i := 0; i < 2; i++ {
		resp, err := commercetools.Get[order](context.Background(), client, "/orders/order-1", nil)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Result)
		assert.Equal(t, "order-1", resp.Result.ID)
	}
}

func TestClient_DebugLogging(t *testing.T) {
	t.Parallel()

	authServer := newAuthServer(t, "test-token")
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer apiServer.Close()

	logger := &recordingLogger{}
	client := newClient(t, apiServer.URL, authServer.URL,
		commercetools.WithLogger(logger), commercetools.WithDebug(true))

	_, err := commercetools.Get[map[string]interface{}](context.Background(), client, "/orders", nil)
	require.NoError(t, err)
	require.Len(t, logger.messages, 2)
	assert.Equal(t, "HTTP Request", logger.messages[0])
	assert.Equal(t, "HTTP Response", logger.messages[1])
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{})  {}
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  {}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {}
