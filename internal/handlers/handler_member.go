package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// memberHandler covers business memberships, per-book access lists and the
// caller's pending invitations.
type memberHandler struct {
	memberService portssvc.MemberSvc
	syncService   portssvc.SyncSvc
	store         *replica.Store
}

func registerMemberRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, store *replica.Store) {
	h := &memberHandler{
		memberService: services.Member,
		syncService:   services.Sync,
		store:         store,
	}

	rg.GET("/businesses/:business_id/members", h.listMembers)
	rg.POST("/businesses/:business_id/invite", h.inviteMember)
	rg.DELETE("/businesses/:business_id/members/:user_id", h.removeMember)

	rg.GET("/books/:book_id/members", h.listBookMembers)
	rg.POST("/books/:book_id/members", h.addBookMember)
	rg.DELETE("/books/:book_id/members/:user_id", h.removeBookMember)

	rg.GET("/invitations", h.listInvitations)
	rg.POST("/invitations/:invitation_id/accept", h.acceptInvitation)
	rg.POST("/invitations/:invitation_id/decline", h.declineInvitation)
}

func (h *memberHandler) listMembers(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.MembersByBusiness(c.Param("business_id")), h.syncService.InProgress())
}

func (h *memberHandler) inviteMember(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.memberService.InviteMember(c.Request.Context(), who, c.Param("business_id"), req); err != nil {
		respondError(c, err, "Failed to send invitation")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "invited"})
}

func (h *memberHandler) removeMember(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.memberService.RemoveMember(c.Request.Context(), who, c.Param("business_id"), c.Param("user_id")); err != nil {
		respondError(c, err, "Failed to remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *memberHandler) listBookMembers(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.BookMembersByBook(c.Param("book_id")), h.syncService.InProgress())
}

func (h *memberHandler) addBookMember(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.AddBookMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.memberService.AddBookMember(c.Request.Context(), who, c.Param("book_id"), req.UserID); err != nil {
		respondError(c, err, "Failed to add book member")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "added"})
}

func (h *memberHandler) removeBookMember(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.memberService.RemoveBookMember(c.Request.Context(), who, c.Param("book_id"), c.Param("user_id")); err != nil {
		respondError(c, err, "Failed to remove book member")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *memberHandler) listInvitations(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	respondData(c, h.store.PendingInvitationsForEmail(who.Email), h.syncService.InProgress())
}

func (h *memberHandler) acceptInvitation(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.memberService.AcceptInvitation(c.Request.Context(), who, c.Param("invitation_id")); err != nil {
		respondError(c, err, "Failed to accept invitation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *memberHandler) declineInvitation(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.memberService.DeclineInvitation(c.Request.Context(), who, c.Param("invitation_id")); err != nil {
		respondError(c, err, "Failed to decline invitation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "declined"})
}
