package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/command"
	"github.com/oksasatya/communet/internal/application/mediator"
	"github.com/oksasatya/communet/internal/application/query"
	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/repository"
	"github.com/oksasatya/communet/internal/interface/middleware"
	"github.com/oksasatya/communet/pkg/response"
)

const maxAvatarBytes = 5 << 20

type ChannelHandler struct {
	Mediator *mediator.Mediator
	Logger   *logrus.Logger
}

func NewChannelHandler(m *mediator.Mediator, logger *logrus.Logger) *ChannelHandler {
	return &ChannelHandler{Mediator: m, Logger: logger}
}

type listChannelsRequest struct {
	Limit  int `form:"limit" binding:"omitempty,gte=1,lte=100"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

type searchChannelsRequest struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,gte=1,lte=100"`
}

type channelURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type createChannelRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
}

type updateChannelRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
}

// profile returns the authenticated profile or writes a 401.
func (h *ChannelHandler) profile(c *gin.Context) (*entity.Profile, bool) {
	p, ok := middleware.CurrentProfile(c)
	if !ok {
		writeError(c, h.Logger, application.ErrUnauthorized)
	}
	return p, ok
}

func (h *ChannelHandler) channelID(c *gin.Context) (string, bool) {
	var uri channelURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeBindError(c, err)
		return "", false
	}
	return uri.ID, true
}

// List GET /api/channels?limit&offset
func (h *ChannelHandler) List(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	var req listChannelsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindError(c, err)
		return
	}
	page, err := mediator.Ask[query.ChannelPage](c.Request.Context(), h.Mediator, query.GetAllChannelsQuery{
		Filters:   repository.ChannelFilters{Limit: req.Limit, Offset: req.Offset},
		ProfileID: p.OID,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newChannelPageView(page), "", nil)
}

// Search GET /api/channels/search?q&size
func (h *ChannelHandler) Search(c *gin.Context) {
	var req searchChannelsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindError(c, err)
		return
	}
	docs, err := mediator.Ask[[]application.ChannelDocument](c.Request.Context(), h.Mediator, query.SearchChannelsQuery{Query: req.Q, Size: req.Size})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newSearchViews(docs), "", nil)
}

// Get GET /api/channels/:id
func (h *ChannelHandler) Get(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	ch, err := mediator.Ask[*entity.Channel](c.Request.Context(), h.Mediator, query.GetChannelByIDQuery{ChannelID: id, ProfileID: p.OID, CheckMember: true})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newChannelView(ch), "", nil)
}

// Create POST /api/channels
func (h *ChannelHandler) Create(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	ch, err := mediator.Send[*entity.Channel](c.Request.Context(), h.Mediator, command.CreateChannelCommand{
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
		Author:      p,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, newChannelView(ch), "channel created", nil)
}

// Update PUT /api/channels/:id
func (h *ChannelHandler) Update(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	var req updateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	ch, err := mediator.Send[*entity.Channel](c.Request.Context(), h.Mediator, command.UpdateChannelCommand{
		ChannelID:   id,
		ProfileID:   p.OID,
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newChannelView(ch), "channel updated", nil)
}

// Delete DELETE /api/channels/:id
func (h *ChannelHandler) Delete(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	if _, err := mediator.Send[struct{}](c.Request.Context(), h.Mediator, command.DeleteChannelCommand{ChannelID: id, ProfileID: p.OID}); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// Connect POST /api/channels/:id/connect
func (h *ChannelHandler) Connect(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	ch, err := mediator.Send[*entity.Channel](c.Request.Context(), h.Mediator, command.ConnectToChannelCommand{ChannelID: id, ProfileID: p.OID})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newChannelView(ch), "connected", nil)
}

// Disconnect POST /api/channels/:id/disconnect
func (h *ChannelHandler) Disconnect(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	if _, err := mediator.Send[struct{}](c.Request.Context(), h.Mediator, command.DisconnectFromChannelCommand{ChannelID: id, ProfileID: p.OID}); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// Members GET /api/channels/:id/members
func (h *ChannelHandler) Members(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	members, err := mediator.Ask[[]*entity.Profile](c.Request.Context(), h.Mediator, query.GetChannelMembersQuery{ChannelID: id, ProfileID: p.OID})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"members": newProfileViews(members)}, "", nil)
}

// UploadAvatar POST /api/channels/:id/avatar (multipart field "file")
func (h *ChannelHandler) UploadAvatar(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	id, ok := h.channelID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	ch, err := mediator.Send[*entity.Channel](c.Request.Context(), h.Mediator, command.UploadChannelAvatarCommand{
		ChannelID:   id,
		ProfileID:   p.OID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newChannelView(ch), "avatar uploaded", nil)
}
