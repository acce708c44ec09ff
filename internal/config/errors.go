package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidCanvas is returned when a canvas dimension is not positive.
	ErrInvalidCanvas = errors.New("invalid canvas size: width and height must be positive")

	// ErrInvalidBeltSpeed is returned when the belt would not move forward.
	ErrInvalidBeltSpeed = errors.New("invalid belt speed: must be positive")

	// ErrInvalidFrameRate is returned when the frame rate is not positive.
	ErrInvalidFrameRate = errors.New("invalid frame rate: must be positive")

	// ErrInvalidCourseLength is returned when the session time is not positive.
	ErrInvalidCourseLength = errors.New("invalid course length: must be positive")

	// ErrInvalidZoom is returned when the zoom range or step is unusable.
	ErrInvalidZoom = errors.New("invalid zoom: need 0 < zoom_min <= 1 <= zoom_max and a positive step")

	// ErrInvalidDragMode is returned for an unknown drag_mode.
	ErrInvalidDragMode = errors.New("invalid drag mode: must be pan or none")

	// ErrInvalidSuperEnhance is returned for an unknown super_enhance variant.
	ErrInvalidSuperEnhance = errors.New("invalid super enhance: must be sobel or threshold")

	// ErrInvalidIdleWindow is returned when the AFK window is not positive.
	ErrInvalidIdleWindow = errors.New("invalid idle window: must be positive")

	// ErrInvalidMaxStrikes is returned when the AFK strike limit is not positive.
	ErrInvalidMaxStrikes = errors.New("invalid max strikes: must be positive")

	// ErrInvalidTimeout is returned when load_timeout or retry_delay is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: load_timeout and retry_delay must be positive")

	// ErrInvalidCreditBands is returned when bands are not strictly descending.
	ErrInvalidCreditBands = errors.New("invalid credit bands: thresholds must descend and credits must not increase")

	// ErrInvalidAPIURL is returned when the service URL is empty.
	ErrInvalidAPIURL = errors.New("invalid api url: must not be empty")
)
