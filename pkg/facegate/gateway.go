package facegate

import "encoding/json"

// Gateway defines the interface to the external AI face service. The
// service is a remote collaborator: enrollment is best effort and the
// alert feeds are plain proxies, so every method may fail without
// affecting visitor state.
type Gateway interface {
	// EnrollFace registers a visitor's photo with the face service.
	// The photo is a base64 data URL as captured at registration.
	EnrollFace(visitorID, name, photo string) error

	// FetchAlerts retrieves the latest recognition alerts, passed
	// through to the caller unparsed.
	FetchAlerts(limit int) (json.RawMessage, error)

	// FetchGeofenceAlerts retrieves the latest geofence alerts.
	FetchGeofenceAlerts(limit int) (json.RawMessage, error)

	// GetName returns the name of the gateway implementation
	GetName() string
}
