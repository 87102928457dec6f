package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wmatuze/vbc-web-sub001/internal/auth"
)

func (a *app) registerAuthRoutes(r *gin.Engine) {
	// The SPA historically posted to /login; both paths serve the same handler.
	r.POST("/login", a.login)
	r.POST("/api/auth/login", a.login)
}

func (a *app) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "email and password required"})
		return
	}

	// Dev-only fixed login. DevMode is forced off in production config and
	// requires an explicitly configured password.
	if a.cfg.DevMode && a.cfg.DevAdminPass != "" &&
		req.Email == a.cfg.DevAdminUser && req.Password == a.cfg.DevAdminPass {
		a.issueToken(c, req.Email)
		return
	}

	var admin bson.M
	err := a.mongo.DB.Collection("admins").
		FindOne(c.Request.Context(), bson.M{"email": req.Email}).
		Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
		return
	}
	if err != nil {
		log.Printf("admin lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "login failed"})
		return
	}

	hash, _ := admin["passwordHash"].(string)
	if !auth.CheckPassword(req.Password, hash) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
		return
	}

	a.issueToken(c, req.Email)
}

func (a *app) issueToken(c *gin.Context, email string) {
	tok, err := auth.Issue(email, auth.RoleAdmin, a.cfg.JWTIssuer, a.cfg.JWTSigningKey, a.cfg.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     tok.Value,
		"expiresAt": tok.ExpiresAt.Format(time.RFC3339),
	})
}
