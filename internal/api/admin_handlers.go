package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ghosttier/arsenal-server/internal/catalog"
	"github.com/ghosttier/arsenal-server/internal/logging"
)

func validateWeapon(w *catalog.Weapon) string {
	if w.Name == "" {
		return "Weapon name is required"
	}
	if !catalog.ValidCategory(w.Category) {
		return "Unknown weapon category"
	}
	if !catalog.ValidTier(w.Tier) {
		return "Unknown tier"
	}
	if !w.Stats.InBounds() {
		return "Stats must be within 0-100"
	}
	return ""
}

func validateCharacter(ch *catalog.Character) string {
	if ch.Name == "" {
		return "Character name is required"
	}
	if !catalog.ValidFaction(ch.Faction) {
		return "Unknown faction"
	}
	if ch.Tier != "" && !catalog.ValidTier(ch.Tier) {
		return "Unknown tier"
	}
	if !ch.Stats.InBounds() {
		return "Stats must be within 0-100"
	}
	return ""
}

func (rs *RestServer) handleAdminCreateWeapon(c *gin.Context) {
	var w catalog.Weapon
	if err := c.ShouldBindJSON(&w); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateWeapon(&w); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	created, err := rs.catalog.CreateWeapon(&w)
	if err != nil {
		logging.Error("Admin: weapon create failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to create weapon")
		return
	}
	logging.Info("Admin: weapon %s created by %s", created.ID, callerID(c))
	respondCreated(c, gin.H{"weapon": created})
}

func (rs *RestServer) handleAdminUpdateWeapon(c *gin.Context) {
	var w catalog.Weapon
	if err := c.ShouldBindJSON(&w); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateWeapon(&w); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	updated, err := rs.catalog.UpdateWeapon(c.Param("id"), &w)
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "Invalid weapon ID")
		return
	case errors.Is(err, catalog.ErrWeaponNotFound):
		respondError(c, http.StatusNotFound, "Weapon not found")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "Failed to update weapon")
		return
	}
	respondOK(c, gin.H{"weapon": updated})
}

func (rs *RestServer) handleAdminDeleteWeapon(c *gin.Context) {
	err := rs.catalog.DeleteWeapon(c.Param("id"))
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "Invalid weapon ID")
		return
	case errors.Is(err, catalog.ErrWeaponNotFound):
		respondError(c, http.StatusNotFound, "Weapon not found")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "Failed to delete weapon")
		return
	}
	respondOK(c, gin.H{"message": "Weapon deleted"})
}

func (rs *RestServer) handleAdminCreateCharacter(c *gin.Context) {
	var ch catalog.Character
	if err := c.ShouldBindJSON(&ch); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateCharacter(&ch); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	created, err := rs.catalog.CreateCharacter(&ch)
	if err != nil {
		logging.Error("Admin: character create failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to create character")
		return
	}
	logging.Info("Admin: character %s created by %s", created.ID, callerID(c))
	respondCreated(c, gin.H{"character": created})
}

func (rs *RestServer) handleAdminUpdateCharacter(c *gin.Context) {
	var ch catalog.Character
	if err := c.ShouldBindJSON(&ch); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateCharacter(&ch); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	updated, err := rs.catalog.UpdateCharacter(c.Param("id"), &ch)
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "Invalid character ID")
		return
	case errors.Is(err, catalog.ErrCharacterNotFound):
		respondError(c, http.StatusNotFound, "Character not found")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "Failed to update character")
		return
	}
	respondOK(c, gin.H{"character": updated})
}

func (rs *RestServer) handleAdminDeleteCharacter(c *gin.Context) {
	err := rs.catalog.DeleteCharacter(c.Param("id"))
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "Invalid character ID")
		return
	case errors.Is(err, catalog.ErrCharacterNotFound):
		respondError(c, http.StatusNotFound, "Character not found")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "Failed to delete character")
		return
	}
	respondOK(c, gin.H{"message": "Character deleted"})
}

func (rs *RestServer) handleAdminListUsers(c *gin.Context) {
	users, err := rs.users.ListUsers()
	if err != nil {
		logging.Error("Admin: user list failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}
	respondOK(c, gin.H{"users": users, "total": len(users)})
}

// handleAdminStats aggregates catalog counts, account counts and process
// metrics for the admin dashboard.
func (rs *RestServer) handleAdminStats(c *gin.Context) {
	stats := make(map[string]interface{})

	weapons, characters, err := rs.catalog.Counts()
	if err == nil {
		stats["catalog"] = gin.H{"weapons": weapons, "characters": characters}
	}

	totalUsers, admins, err := rs.users.CountUsers()
	if err == nil {
		stats["users"] = gin.H{"total": totalUsers, "admins": admins}
	}

	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()
	stats["server"] = gin.H{
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.2f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
		"goroutines":  runtime.NumGoroutine(),
		"server_time": time.Now().Unix(),
	}

	respondOK(c, stats)
}
