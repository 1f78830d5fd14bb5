package facegate

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// HTTPGateway talks to the AI face service over HTTP
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// Config holds configuration for the face service gateway
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPGateway creates a new HTTP face service gateway
func NewHTTPGateway(config Config) *HTTPGateway {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetName returns the gateway implementation name
func (g *HTTPGateway) GetName() string {
	return "FaceGate HTTP"
}

// EnrollFace posts the visitor's photo to the face service's /enroll
// endpoint as a multipart form: visitor_id, name, category and the
// decoded image file.
func (g *HTTPGateway) EnrollFace(visitorID, name, photo string) error {
	if photo == "" {
		return fmt.Errorf("no photo to enroll")
	}

	contentType, imageData, err := decodeDataURL(photo)
	if err != nil {
		return fmt.Errorf("failed to decode photo: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("visitor_id", visitorID); err != nil {
		return fmt.Errorf("failed to build enrollment form: %w", err)
	}
	if err := writer.WriteField("name", name); err != nil {
		return fmt.Errorf("failed to build enrollment form: %w", err)
	}
	if err := writer.WriteField("category", "visitor"); err != nil {
		return fmt.Errorf("failed to build enrollment form: %w", err)
	}

	part, err := writer.CreateFormFile("file", "photo"+extensionFor(contentType))
	if err != nil {
		return fmt.Errorf("failed to build enrollment form: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return fmt.Errorf("failed to build enrollment form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build enrollment form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+"/enroll", &body)
	if err != nil {
		return fmt.Errorf("failed to create enrollment request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("face service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("enrollment rejected with status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// FetchAlerts proxies the face service's alert feed
func (g *HTTPGateway) FetchAlerts(limit int) (json.RawMessage, error) {
	return g.fetch(fmt.Sprintf("%s/alerts?limit=%d", g.baseURL, limit))
}

// FetchGeofenceAlerts proxies the face service's geofence alert feed
func (g *HTTPGateway) FetchGeofenceAlerts(limit int) (json.RawMessage, error) {
	return g.fetch(fmt.Sprintf("%s/alerts/geofence?limit=%d", g.baseURL, limit))
}

func (g *HTTPGateway) fetch(url string) (json.RawMessage, error) {
	resp, err := g.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("face service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read face service response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("face service returned status %d", resp.StatusCode)
	}

	return json.RawMessage(body), nil
}

// decodeDataURL splits a "data:<type>;base64,<payload>" string into its
// content type and decoded bytes. A bare base64 string without the
// data-URL prefix is accepted as image/jpeg.
func decodeDataURL(dataURL string) (string, []byte, error) {
	contentType := "image/jpeg"
	payload := dataURL

	if strings.HasPrefix(dataURL, "data:") {
		idx := strings.Index(dataURL, ",")
		if idx < 0 {
			return "", nil, fmt.Errorf("malformed data URL")
		}
		meta := dataURL[len("data:"):idx]
		payload = dataURL[idx+1:]
		if ct := strings.TrimSuffix(meta, ";base64"); ct != "" {
			contentType = ct
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}

	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
