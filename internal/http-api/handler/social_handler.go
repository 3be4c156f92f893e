package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/middleware"
	"bookhub/internal/http-api/service"
)

type SocialHandler struct {
	socialSvc service.SocialService
	userSvc   service.UserService
}

func NewSocialHandler(socialSvc service.SocialService, userSvc service.UserService) *SocialHandler {
	return &SocialHandler{socialSvc: socialSvc, userSvc: userSvc}
}

func (h *SocialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/follow", h.Follow)
	rg.DELETE("/unfollow/:user_id", h.Unfollow)
	rg.GET("/followers/:user_id", h.Followers)
	rg.GET("/following/:user_id", h.Following)

	rg.POST("/reviews/:reading_id/like", h.Like)
	rg.DELETE("/reviews/:reading_id/unlike", h.Unlike)
	rg.POST("/reviews/:reading_id/comments", h.AddComment)
	rg.GET("/reviews/:reading_id/comments", h.GetComments)
	rg.PUT("/reviews/comments/:comment_id", h.UpdateComment)
	rg.DELETE("/reviews/comments/:comment_id", h.DeleteComment)

	rg.GET("/feed", h.Feed)
}

func (h *SocialHandler) Follow(c *gin.Context) {
	var req dto.FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userSvc.Follow(middleware.UserID(c), req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FollowResponse{FollowingID: req.UserID, Status: "following"})
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.userSvc.Unfollow(middleware.UserID(c), targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FollowResponse{FollowingID: targetID, Status: "unfollowed"})
}

func (h *SocialHandler) Followers(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	profiles, err := h.userSvc.Followers(userID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": profiles, "count": len(profiles)})
}

func (h *SocialHandler) Following(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	profiles, err := h.userSvc.Following(userID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": profiles, "count": len(profiles)})
}

func (h *SocialHandler) Like(c *gin.Context) {
	readingID, err := strconv.ParseInt(c.Param("reading_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	status, err := h.socialSvc.LikeReview(middleware.UserID(c), readingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, status)
}

func (h *SocialHandler) Unlike(c *gin.Context) {
	readingID, err := strconv.ParseInt(c.Param("reading_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	status, err := h.socialSvc.UnlikeReview(middleware.UserID(c), readingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *SocialHandler) AddComment(c *gin.Context) {
	readingID, err := strconv.ParseInt(c.Param("reading_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	var req dto.CommentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.socialSvc.AddComment(middleware.UserID(c), readingID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *SocialHandler) GetComments(c *gin.Context) {
	readingID, err := strconv.ParseInt(c.Param("reading_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	comments, err := h.socialSvc.GetComments(middleware.UserID(c), readingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

func (h *SocialHandler) UpdateComment(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	var req dto.CommentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.socialSvc.UpdateComment(middleware.UserID(c), commentID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *SocialHandler) DeleteComment(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	if err := h.socialSvc.DeleteComment(middleware.UserID(c), commentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

func (h *SocialHandler) Feed(c *gin.Context) {
	feed, err := h.socialSvc.Feed(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}
