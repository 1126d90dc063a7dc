package dto

// PageRequest is the shared pagination query block.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage applies defaults when limit/offset are missing.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// QuantityInput is a dual-unit amount as it arrives on the wire.
type QuantityInput struct {
	Boxes  int `json:"boxes" validate:"min=0"`
	Pieces int `json:"pieces" validate:"min=0"`
}

// ErrorResponse is the error envelope: ok is always false.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
