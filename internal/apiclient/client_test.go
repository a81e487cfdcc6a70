package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return New(Options{URL: url}, zerolog.Nop())
}

func TestCallFlattensEnvelopeAndAttachesEmail(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"data":{"recordId":"R1"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := WithEmail(context.Background(), "teacher@school.ac.th")
	res := c.Call(ctx, ActionDeleteRecord, Payload{"recordId": "R1"})

	require.True(t, res.OK)
	require.NoError(t, res.Err())
	require.Equal(t, "deleteRecord", got["action"])
	require.Equal(t, "R1", got["recordId"])
	require.Equal(t, "teacher@school.ac.th", got["email"])

	var data struct {
		RecordID string `json:"recordId"`
	}
	require.NoError(t, res.Decode(&data))
	require.Equal(t, "R1", data.RecordID)
}

func TestCallKeepsExplicitEmail(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := WithEmail(context.Background(), "cached@school.ac.th")
	c.Call(ctx, ActionLoginUser, Payload{"email": "typed@school.ac.th", "action": "ignored"})

	require.Equal(t, "typed@school.ac.th", got["email"])
	require.Equal(t, "loginUser", got["action"])
}

func TestCallWithoutEmail(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	newTestClient(srv.URL).Call(context.Background(), ActionGetUsers, nil)
	require.NotContains(t, got, "email")
}

func TestCallApplicationError(t *testing.T) {
	for name, body := range map[string]string{
		"object": `{"ok":false,"error":{"message":"ไม่มีสิทธิ์"}}`,
		"string": `{"ok":false,"error":"ไม่มีสิทธิ์"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			res := newTestClient(srv.URL).Call(context.Background(), ActionGetUsers, nil)
			require.False(t, res.OK)
			require.EqualError(t, res.Err(), "ไม่มีสิทธิ์")
			require.False(t, IsTransport(res.Err()))
		})
	}
}

func TestCallMissingErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	res := newTestClient(srv.URL).Call(context.Background(), ActionGetUsers, nil)
	require.EqualError(t, res.Err(), ErrUnknown.Error())
}

func TestCallTransportFailures(t *testing.T) {
	t.Run("unparseable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		}))
		defer srv.Close()

		res := newTestClient(srv.URL).Call(context.Background(), ActionGetMe, nil)
		require.False(t, res.OK)
		require.True(t, IsTransport(res.Err()))
		require.Contains(t, res.Err().Error(), "invalid response")
	})

	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		res := newTestClient(srv.URL).Call(context.Background(), ActionGetMe, nil)
		require.True(t, IsTransport(res.Err()))
		require.EqualError(t, res.Err(), "HTTP 502")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		res := newTestClient(url).Call(context.Background(), ActionGetMe, nil)
		require.False(t, res.OK)
		require.True(t, IsTransport(res.Err()))
	})
}

func TestInFlightCounter(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	done := make(chan Result)
	go func() {
		done <- c.Call(context.Background(), ActionGetMe, nil)
	}()

	<-entered
	require.EqualValues(t, 1, c.InFlight())
	close(release)

	select {
	case res := <-done:
		require.True(t, res.OK)
	case <-time.After(5 * time.Second):
		t.Fatal("call did not finish")
	}
	require.EqualValues(t, 0, c.InFlight())
}

func TestMockMode(t *testing.T) {
	c := newTestClient("")
	require.True(t, c.MockMode())

	res := c.Call(context.Background(), ActionListRecords, nil)
	require.True(t, res.OK)
	var list []map[string]any
	require.NoError(t, res.Decode(&list))
	require.Empty(t, list)

	res = c.Call(context.Background(), ActionGetMe, nil)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, res.Decode(&me))
	require.Equal(t, "teacher@school.ac.th", me.Email)
	require.Equal(t, "teacher", me.Role)

	res = c.Call(context.Background(), ActionDeleteRecord, Payload{"recordId": "x"})
	require.True(t, res.OK)
	require.NoError(t, res.Decode(&me))
}
