package handler

// ApiTestResponseDTO is the reply to a successful GET /api/test
// @swagger:model ApiTestResponseDTO
type ApiTestResponseDTO struct {
	// Fixed success message
	Message string `json:"message" validate:"required"`
	// ISO-8601 time the reply was built
	Timestamp string `json:"timestamp" validate:"required"`
	// Time spent handling the request, e.g. "104ms"
	Duration string `json:"duration" validate:"required"`
}

// PostTestResponseDTO is the reply to a successful POST /api/test
// @swagger:model PostTestResponseDTO
type PostTestResponseDTO struct {
	// Fixed success message
	Message string `json:"message" validate:"required"`
	// The request body, echoed back unchanged
	Received interface{} `json:"received" validate:"required"`
	// ISO-8601 time the reply was built
	Timestamp string `json:"timestamp" validate:"required"`
}
