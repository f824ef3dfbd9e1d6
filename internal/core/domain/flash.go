package domain

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot toast shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
