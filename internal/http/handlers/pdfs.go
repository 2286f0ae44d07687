package handlers

import "net/http"

// ListPDFs returns the full catalog. Any storage error yields an empty
// result with an error message rather than a partial listing.
func (a *App) ListPDFs(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Catalog.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("pdf listing failed")
		a.error(w, http.StatusBadGateway, "storage_error",
			msg(r.Context(), "PDFs konnten nicht geladen werden. Bitte aktualisiere die Seite.", "Could not load PDFs. Please refresh the page."))
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"pdfs":  entries,
		"count": len(entries),
	})
}
