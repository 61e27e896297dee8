package controllers

import (
	"net/http"

	"github.com/forkful/forkful-backend/api/responses"
	"github.com/forkful/forkful-backend/internal/catalog"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/logger"
)

// VendorMenu returns the vendor's menu, served from cache when warm.
func VendorMenu(cache *catalog.Cache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cache == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog cache unavailable"))
			return
		}

		vendorID, err := vendorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := cache.GetMenu(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// RefreshVendorMenu rebuilds the cached menu from the database.
func RefreshVendorMenu(cache *catalog.Cache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cache == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog cache unavailable"))
			return
		}

		vendorID, err := vendorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := cache.Refresh(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
