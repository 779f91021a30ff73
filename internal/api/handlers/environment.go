// environment.go — обработчик GET /api/v1/environment.
// Сообщает UI режим работы и ограничения текущего окружения.
package handlers

import "net/http"

// environmentResponse — ответ GET /api/v1/environment.
type environmentResponse struct {
	IsServerless bool     `json:"isServerless"`
	Environment  string   `json:"environment"`
	Limitations  []string `json:"limitations"`
}

// Environment — реализация GET /api/v1/environment.
func (h *APIHandler) Environment(w http.ResponseWriter, _ *http.Request) {
	resp := environmentResponse{
		IsServerless: h.serverless,
		Environment:  "self-hosted",
		Limitations:  []string{},
	}
	if h.serverless {
		resp.Environment = "serverless"
		resp.Limitations = []string{
			"YouTube only",
			"May encounter bot detection",
			"Limited format selection",
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
