package handler

import (
	"net/http"

	"github.com/campushack/portal/internal/service"
	"github.com/campushack/portal/pkg/response"
	"github.com/campushack/portal/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TeamHandler struct {
	teamService service.TeamService
}

func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) Register(c *gin.Context) {
	var input service.CreateTeamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	leaderID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), leaderID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Team registered successfully", "team": team})
}

func (h *TeamHandler) FindMember(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
		return
	}

	var problemID *uuid.UUID
	if raw := c.Query("problem_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid problem id"})
			return
		}
		problemID = &id
	}

	requesterID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	candidate, err := h.teamService.FindMemberCandidate(c.Request.Context(), requesterID, email, problemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, candidate)
}
