package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ghosttier/arsenal-server/internal/catalog"
	"github.com/ghosttier/arsenal-server/internal/logging"
)

// handleListWeapons serves the public weapon catalog with filters and
// pagination. Only active entries are visible here.
func (rs *RestServer) handleListWeapons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	filter := catalog.WeaponFilter{
		Category:   catalog.WeaponCategory(c.Query("category")),
		Tier:       catalog.Tier(c.Query("tier")),
		Search:     c.Query("search"),
		ActiveOnly: true,
		Page:       page,
		Limit:      limit,
	}
	if filter.Category != "" && !catalog.ValidCategory(filter.Category) {
		respondError(c, http.StatusBadRequest, "Unknown weapon category")
		return
	}
	if filter.Tier != "" && !catalog.ValidTier(filter.Tier) {
		respondError(c, http.StatusBadRequest, "Unknown tier")
		return
	}
	filter.Normalize()

	weapons, total, err := rs.catalog.ListWeapons(filter)
	if err != nil {
		logging.Error("Catalog: weapon list failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondOK(c, gin.H{
		"weapons": weapons,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

func (rs *RestServer) handleGetWeapon(c *gin.Context) {
	w, err := rs.catalog.FindWeapon(c.Param("id"))
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "Invalid weapon ID")
		return
	case errors.Is(err, catalog.ErrWeaponNotFound):
		respondError(c, http.StatusNotFound, "Weapon not found")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !w.IsActive {
		respondError(c, http.StatusNotFound, "Weapon not found")
		return
	}
	respondOK(c, gin.H{"weapon": w})
}

func (rs *RestServer) handleListCharacters(c *gin.Context) {
	characters, err := rs.catalog.ListCharacters(true)
	if err != nil {
		logging.Error("Catalog: character list failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondOK(c, gin.H{"characters": characters})
}

func (rs *RestServer) handleGetCharacter(c *gin.Context) {
	ch, err := rs.catalog.FindCharacter(c.Param("id"))
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "Invalid character ID")
		return
	case errors.Is(err, catalog.ErrCharacterNotFound):
		respondError(c, http.StatusNotFound, "Character not found")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !ch.IsActive {
		respondError(c, http.StatusNotFound, "Character not found")
		return
	}
	respondOK(c, gin.H{"character": ch})
}
