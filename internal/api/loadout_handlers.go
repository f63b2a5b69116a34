package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoadoutActionRequest drives the primary loadout and character
// selection through a single endpoint.
type LoadoutActionRequest struct {
	Action      string `json:"action" binding:"required"`
	WeaponID    string `json:"weaponId"`
	CharacterID string `json:"characterId"`
}

// CreateLoadoutRequest is the payload for a named loadout preset.
type CreateLoadoutRequest struct {
	Name    string   `json:"name"`
	Weapons []string `json:"weapons"`
}

func (rs *RestServer) handleGetLoadout(c *gin.Context) {
	view, err := rs.loadouts.GetView(callerID(c))
	if err != nil {
		respondLoadoutError(c, err)
		return
	}
	respondOK(c, gin.H{
		"loadout":           view.Loadout,
		"selectedCharacter": view.SelectedCharacter,
	})
}

func (rs *RestServer) handleLoadoutAction(c *gin.Context) {
	var req LoadoutActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	uid := callerID(c)
	switch req.Action {
	case "add-weapon":
		if req.WeaponID == "" {
			respondError(c, http.StatusBadRequest, "weaponId required")
			return
		}
		ids, err := rs.loadouts.AddWeapon(uid, req.WeaponID)
		if err != nil {
			respondLoadoutError(c, err)
			return
		}
		respondOK(c, gin.H{"loadout": ids})

	case "remove-weapon":
		if req.WeaponID == "" {
			respondError(c, http.StatusBadRequest, "weaponId required")
			return
		}
		ids, err := rs.loadouts.RemoveWeapon(uid, req.WeaponID)
		if err != nil {
			respondLoadoutError(c, err)
			return
		}
		respondOK(c, gin.H{"loadout": ids})

	case "set-character":
		if req.CharacterID == "" {
			respondError(c, http.StatusBadRequest, "characterId required")
			return
		}
		ch, err := rs.loadouts.SetActiveCharacter(uid, req.CharacterID)
		if err != nil {
			respondLoadoutError(c, err)
			return
		}
		respondOK(c, gin.H{"selectedCharacter": ch})

	default:
		respondError(c, http.StatusBadRequest, "Invalid action")
	}
}

func (rs *RestServer) handleListNamedLoadouts(c *gin.Context) {
	views, err := rs.loadouts.ListNamedLoadouts(callerID(c))
	if err != nil {
		respondLoadoutError(c, err)
		return
	}
	respondOK(c, views)
}

func (rs *RestServer) handleCreateNamedLoadout(c *gin.Context) {
	var req CreateLoadoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	nl, err := rs.loadouts.CreateNamedLoadout(callerID(c), req.Name, req.Weapons)
	if err != nil {
		respondLoadoutError(c, err)
		return
	}
	respondCreated(c, nl)
}

func (rs *RestServer) handleDeleteNamedLoadout(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		respondError(c, http.StatusBadRequest, "Loadout ID required")
		return
	}
	if err := rs.loadouts.DeleteNamedLoadout(callerID(c), id); err != nil {
		respondLoadoutError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Loadout deleted"})
}
