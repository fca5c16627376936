package dto

// ErrorResponse cuerpo de error HTTP. Details lleva datos estructurados del rechazo
// (campos inválidos, cantidad disponible, diferencias de reconstrucción).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// HealthResponse salida de /health.
type HealthResponse struct {
	Status         string `json:"status"`
	LastMovementID int64  `json:"last_movement_id"`
}
