package facegate

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollFace(t *testing.T) {
	photo := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))

	t.Run("Success", func(t *testing.T) {
		var gotPath string
		var gotVisitorID, gotName, gotCategory, gotFilename string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path

			require.NoError(t, r.ParseMultipartForm(1<<20))
			gotVisitorID = r.FormValue("visitor_id")
			gotName = r.FormValue("name")
			gotCategory = r.FormValue("category")

			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			gotFilename = header.Filename

			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		gateway := NewHTTPGateway(Config{BaseURL: server.URL})

		err := gateway.EnrollFace("visitor-1", "Alice Perera", photo)
		require.NoError(t, err)
		assert.Equal(t, "/enroll", gotPath)
		assert.Equal(t, "visitor-1", gotVisitorID)
		assert.Equal(t, "Alice Perera", gotName)
		assert.Equal(t, "visitor", gotCategory)
		assert.Equal(t, "photo.png", gotFilename)
	})

	t.Run("Rejected By Service", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no face detected", http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		gateway := NewHTTPGateway(Config{BaseURL: server.URL})

		err := gateway.EnrollFace("visitor-1", "Alice Perera", photo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "enrollment rejected with status 422")
		assert.Contains(t, err.Error(), "no face detected")
	})

	t.Run("Service Unreachable", func(t *testing.T) {
		gateway := NewHTTPGateway(Config{BaseURL: "http://127.0.0.1:1"})

		err := gateway.EnrollFace("visitor-1", "Alice Perera", photo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "face service unreachable")
	})

	t.Run("Missing Photo", func(t *testing.T) {
		gateway := NewHTTPGateway(Config{BaseURL: "http://unused"})

		err := gateway.EnrollFace("visitor-1", "Alice Perera", "")
		assert.Error(t, err)
	})
}

func TestFetchAlerts(t *testing.T) {
	t.Run("Passes Payload Through Unparsed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/alerts", r.URL.Path)
			assert.Equal(t, "25", r.URL.Query().Get("limit"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"camera":"gate-1"}]`))
		}))
		defer server.Close()

		gateway := NewHTTPGateway(Config{BaseURL: server.URL})

		alerts, err := gateway.FetchAlerts(25)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"camera":"gate-1"}]`, string(alerts))
	})

	t.Run("Geofence Feed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/alerts/geofence", r.URL.Path)
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		gateway := NewHTTPGateway(Config{BaseURL: server.URL})

		alerts, err := gateway.FetchGeofenceAlerts(10)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(alerts))
	})

	t.Run("Upstream Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		gateway := NewHTTPGateway(Config{BaseURL: server.URL})

		alerts, err := gateway.FetchAlerts(10)
		assert.Error(t, err)
		assert.Nil(t, alerts)
	})
}

func TestDecodeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("image-bytes"))

	tests := []struct {
		name        string
		input       string
		wantType    string
		wantData    string
		expectError bool
	}{
		{
			name:     "PNG Data URL",
			input:    "data:image/png;base64," + payload,
			wantType: "image/png",
			wantData: "image-bytes",
		},
		{
			name:     "Bare Base64 Defaults To JPEG",
			input:    payload,
			wantType: "image/jpeg",
			wantData: "image-bytes",
		},
		{
			name:        "Malformed Data URL",
			input:       "data:image/png;base64",
			expectError: true,
		},
		{
			name:        "Invalid Base64",
			input:       "data:image/png;base64,!!!",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, data, err := decodeDataURL(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, contentType)
			assert.Equal(t, tt.wantData, string(data))
		})
	}
}

func TestDisabledGateway(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	gateway := NewDisabledGateway(logger)

	t.Run("Enrollment Is A No-Op", func(t *testing.T) {
		assert.NoError(t, gateway.EnrollFace("visitor-1", "Alice Perera", "photo"))
	})

	t.Run("Alert Feeds Are Empty", func(t *testing.T) {
		alerts, err := gateway.FetchAlerts(10)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(alerts))

		geofence, err := gateway.FetchGeofenceAlerts(10)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(geofence))
	})
}
