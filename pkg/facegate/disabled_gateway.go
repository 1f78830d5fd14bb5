package facegate

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// DisabledGateway is used in development mode when no face service is
// running. Enrollment is logged and dropped; alert feeds return empty
// lists.
type DisabledGateway struct {
	logger *logrus.Logger
}

// NewDisabledGateway creates a gateway that never contacts a service
func NewDisabledGateway(logger *logrus.Logger) *DisabledGateway {
	return &DisabledGateway{
		logger: logger,
	}
}

// GetName returns the gateway implementation name
func (g *DisabledGateway) GetName() string {
	return "FaceGate disabled"
}

// EnrollFace logs the enrollment and succeeds
func (g *DisabledGateway) EnrollFace(visitorID, name, photo string) error {
	g.logger.WithFields(logrus.Fields{
		"visitor_id": visitorID,
		"name":       name,
	}).Info("Face enrollment skipped (gateway disabled)")
	return nil
}

// FetchAlerts returns an empty alert list
func (g *DisabledGateway) FetchAlerts(limit int) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

// FetchGeofenceAlerts returns an empty alert list
func (g *DisabledGateway) FetchGeofenceAlerts(limit int) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}
