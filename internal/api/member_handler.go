package api

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"alcyxob/flighttrack/internal/scoring"
	"alcyxob/flighttrack/internal/service"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemberHandler struct {
	memberService service.MemberService
}

func NewMemberHandler(memberService service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

type UpdateProfileRequest struct {
	Rank      string         `json:"rank"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Flight    domain.Flight  `json:"flight"`
	Gender    scoring.Gender `json:"gender" binding:"omitempty,oneof=male female"`
}

// Me returns the authenticated member.
func (h *MemberHandler) Me(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	member, err := h.memberService.Get(c.Request.Context(), viewerID, viewerID)
	if err != nil {
		respondServiceError(c, err, "load member")
		return
	}
	c.JSON(http.StatusOK, MapMemberToResponse(member))
}

// ListMembers godoc
// @Summary List squadron members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param flight query string false "Only this flight"
// @Success 200 {array} MemberResponse
// @Router /members [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	members, err := h.memberService.List(c.Request.Context(), viewerID, domain.Flight(c.Query("flight")))
	if err != nil {
		respondServiceError(c, err, "list members")
		return
	}
	resp := make([]MemberResponse, 0, len(members))
	for i := range members {
		resp = append(resp, MapMemberToResponse(&members[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	viewerID, ok := currentMember(c)
	if !ok {
		return
	}
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}
	member, err := h.memberService.Get(c.Request.Context(), viewerID, memberID)
	if err != nil {
		respondServiceError(c, err, "load member")
		return
	}
	c.JSON(http.StatusOK, MapMemberToResponse(member))
}

// UpdateMember godoc
// @Summary Update a member's profile
// @Description Members may edit themselves; the creator and UFPM may edit anyone.
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memberId path string true "Member ID"
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} MemberResponse
// @Router /members/{memberId} [patch]
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	member, err := h.memberService.UpdateProfile(c.Request.Context(), actorID, memberID, repository.ProfileUpdate{
		Rank:      req.Rank,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Flight:    req.Flight,
		Gender:    req.Gender,
	})
	if err != nil {
		respondServiceError(c, err, "update member")
		return
	}
	c.JSON(http.StatusOK, MapMemberToResponse(member))
}

func (h *MemberHandler) ApprovePTL(c *gin.Context) {
	h.accountChange(c, h.memberService.ApprovePTL, "approve PTL")
}

func (h *MemberHandler) RejectPTL(c *gin.Context) {
	h.accountChange(c, h.memberService.RejectPTL, "reject PTL")
}

func (h *MemberHandler) RevokePTL(c *gin.Context) {
	h.accountChange(c, h.memberService.RevokePTL, "revoke PTL")
}

func (h *MemberHandler) SetUFPM(c *gin.Context) {
	h.accountChange(c, h.memberService.SetUFPM, "set UFPM")
}

type accountChangeFunc func(ctx context.Context, actorID, memberID primitive.ObjectID) error

func (h *MemberHandler) accountChange(c *gin.Context, change accountChangeFunc, action string) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}
	if err := change(c.Request.Context(), actorID, memberID); err != nil {
		respondServiceError(c, err, action)
		return
	}
	member, err := h.memberService.Get(c.Request.Context(), actorID, memberID)
	if err != nil {
		respondServiceError(c, err, "load member")
		return
	}
	c.JSON(http.StatusOK, MapMemberToResponse(member))
}

// RemoveMember deletes a member's account.
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	actorID, ok := currentMember(c)
	if !ok {
		return
	}
	memberID, ok := memberIDParam(c)
	if !ok {
		return
	}
	if err := h.memberService.Remove(c.Request.Context(), actorID, memberID); err != nil {
		respondServiceError(c, err, "remove member")
		return
	}
	c.Status(http.StatusNoContent)
}
