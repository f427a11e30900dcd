package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	zshttp "github.com/fivetwenty-io/zsubs-client/internal/http"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTokenManager for testing.
type MockTokenManager struct {
	token string
	err   error
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, m.err
}

func (m *MockTokenManager) RefreshToken(ctx context.Context) error {
	return nil
}

func (m *MockTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// MockLogger for testing.
type MockLogger struct {
	mutex sync.Mutex
	logs  []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v1/customers/903", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Zoho-oauthtoken 1000.abc", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			_, _ = writer.Write([]byte(`{"code":0,"message":"success","customer":{"customer_id":"903"}}`))
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL+"/api/v1/", &MockTokenManager{token: "1000.abc"})

		resp, err := client.Do(context.Background(), &zshttp.Request{Method: "GET", Path: "customers/903"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		env, err := zsubs.ParseEnvelope(resp.Body)
		require.NoError(t, err)

		customer, ok := env.Payload("customer")
		require.True(t, ok)
		assert.Equal(t, "903", customer.String("customer_id"))
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/customers", request.URL.Path)
			assert.Equal(t, "email=a%40example.com&page=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, nil)

		resp, err := client.Do(context.Background(), &zshttp.Request{
			Method: "GET",
			Path:   "/customers",
			Query:  url.Values{"page": []string{"2"}, "email": []string{"a@example.com"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with ordered map body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "Basic", body["name"])
			assert.Equal(t, "basic-monthly", body["plan_code"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, nil)

		resp, err := client.Post(context.Background(), "plans", zsubs.MapOf("plan_code", "basic-monthly", "name", "Basic"))
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"code":1002,"message":"Customer does not exist."}`))
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "customers/invalid", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 404, resp.StatusCode)

		statusErr := &zsubs.StatusError{}
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, 1002, statusErr.Code)
		assert.Equal(t, "Customer does not exist.", statusErr.Message)
		assert.True(t, zsubs.IsNotFound(err))
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := zshttp.NewClient(serverURL, nil)

		resp, err := client.Get(context.Background(), "customers", nil)
		require.Error(t, err)
		assert.Nil(t, resp)

		transportErr := &zsubs.TransportError{}
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, "GET", transportErr.Method)
		assert.Equal(t, "customers", transportErr.Path)
	})

	t.Run("token failure", func(t *testing.T) {
		t.Parallel()

		client := zshttp.NewClient("http://127.0.0.1:1", &MockTokenManager{err: errors.New("no token")})

		_, err := client.Get(context.Background(), "customers", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get access token")
	})

	t.Run("default and custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "10234695", request.Header.Get(zsubs.OrganizationHeader))
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "zsubs-test", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, nil,
			zshttp.WithHeaders(map[string]string{zsubs.OrganizationHeader: "10234695"}),
			zshttp.WithUserAgent("zsubs-test"),
		)

		resp, err := client.Do(context.Background(), &zshttp.Request{
			Method:  "GET",
			Path:    "plans",
			Headers: map[string]string{"X-Custom-Header": "custom-value"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("custom auth scheme", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "Bearer 1000.abc", request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, &MockTokenManager{token: "1000.abc"}, zshttp.WithAuthScheme("Bearer"))

		_, err := client.Get(context.Background(), "plans", nil)
		require.NoError(t, err)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"code":0,"message":"success"}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := zshttp.NewClient(server.URL, nil, zshttp.WithLogger(logger), zshttp.WithDebug(true))

		_, err := client.Get(context.Background(), "plans", nil)
		require.NoError(t, err)

		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	var seenRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seenRequestID = request.Header.Get(zsubs.RequestIDHeader)
		assert.Equal(t, "yes", request.Header.Get("X-Intercepted"))
		writer.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	var (
		gotStatus int
		gotPath   string
	)

	chain := zsubs.NewInterceptorChain()
	chain.AddRequestInterceptor(zsubs.RequestIDInterceptor())
	chain.AddRequestInterceptor(zsubs.HeaderInterceptor(map[string]string{"X-Intercepted": "yes"}))
	chain.AddResponseInterceptor(func(ctx context.Context, req *zsubs.Request, resp *zsubs.Response) error {
		gotStatus = resp.StatusCode
		gotPath = req.Path

		return nil
	})

	client := zshttp.NewClient(server.URL, nil, zshttp.WithInterceptors(chain))

	_, err := client.Post(context.Background(), "invoices/1/void", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, seenRequestID)
	assert.Equal(t, http.StatusAccepted, gotStatus)
	assert.Equal(t, "invoices/1/void", gotPath)

	t.Run("request interceptor error aborts", func(t *testing.T) {
		t.Parallel()

		failing := zsubs.NewInterceptorChain()
		failing.AddRequestInterceptor(func(ctx context.Context, req *zsubs.Request) error {
			return errors.New("blocked")
		})

		blocked := zshttp.NewClient(server.URL, nil, zshttp.WithInterceptors(failing))

		_, err := blocked.Get(context.Background(), "plans", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "request interceptor failed")
	})
}

func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*zshttp.Client, context.Context) (*zshttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *zshttp.Client, ctx context.Context) (*zshttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *zshttp.Client, ctx context.Context) (*zshttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *zshttp.Client, ctx context.Context) (*zshttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *zshttp.Client, ctx context.Context) (*zshttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *zshttp.Client, ctx context.Context) (*zshttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := zshttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("no retries by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, nil, zshttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, nil, zshttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := zshttp.NewClient(server.URL, nil, zshttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}
