package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rolo-app/rolo/internal/http/middleware"
	"github.com/rolo-app/rolo/internal/observability"
	"github.com/rolo-app/rolo/internal/service"
)

type ExportHandler struct {
	exports *service.ExportService
}

func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export streams the caller's data as a downloadable JSON document.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	doc, err := h.exports.Build(user)
	if err != nil {
		observability.RecordExport("error")
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exports.Filename()))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		observability.RecordExport("error")
		return
	}
	observability.RecordExport("success")
	observability.Audit(r, "export.download", "user_id", user.ID)
}
