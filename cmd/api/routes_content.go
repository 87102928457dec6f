package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wmatuze/vbc-web-sub001/internal/auth"
	"github.com/wmatuze/vbc-web-sub001/internal/content"
	"github.com/wmatuze/vbc-web-sub001/internal/media"
)

func (a *app) registerContentRoutes(r *gin.Engine) {
	api := r.Group("/api")
	admin := r.Group("/api", auth.AdminAuth(a.cfg.JWTSigningKey, a.cfg.JWTIssuer))

	for _, ent := range content.Entities {
		ent := ent
		api.GET("/"+ent.Name, a.listContent(ent))
		api.GET("/"+ent.Name+"/:id", a.getContent(ent))
		admin.POST("/"+ent.Name, a.createContent(ent))
		admin.PUT("/"+ent.Name+"/:id", a.updateContent(ent))
		admin.DELETE("/"+ent.Name+"/:id", a.deleteContent(ent))
	}

	admin.POST("/upload", a.upload)
}

func (a *app) listContent(ent content.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := a.content.List(c.Request.Context(), ent)
		if err != nil {
			log.Printf("list %s failed: %v", ent.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": docs})
	}
}

func (a *app) getContent(ent content.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := a.content.Get(c.Request.Context(), ent, c.Param("id"))
		if err != nil {
			writeContentError(c, ent, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": doc})
	}
}

func (a *app) createContent(ent content.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON body"})
			return
		}
		doc, err := a.content.Create(c.Request.Context(), ent, payload)
		if err != nil {
			writeContentError(c, ent, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": ent.Name + " created", "data": doc})
	}
}

func (a *app) updateContent(ent content.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON body"})
			return
		}
		doc, err := a.content.Update(c.Request.Context(), ent, c.Param("id"), payload)
		if err != nil {
			writeContentError(c, ent, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": ent.Name + " updated", "data": doc})
	}
}

func (a *app) deleteContent(ent content.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.content.Delete(c.Request.Context(), ent, c.Param("id")); err != nil {
			writeContentError(c, ent, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": ent.Name + " deleted"})
	}
}

func writeContentError(c *gin.Context, ent content.Entity, err error) {
	switch {
	case errors.Is(err, content.ErrBadID):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": ent.Name + " not found"})
	default:
		log.Printf("%s handler failed: %v", ent.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}

// upload accepts a multipart file or a base64 data URL and stores it with the
// image CDN, returning the URL to attach to content documents.
func (a *app) upload(c *gin.Context) {
	if a.cdn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "image storage not configured"})
		return
	}

	var result *media.UploadResult
	var err error

	switch {
	case strings.Contains(c.ContentType(), "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "read file failed"})
			return
		}
		result, err = a.cdn.UploadBytes(data, header.Filename)

	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = a.cdn.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "image upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     result.SecureURL,
		"width":   result.Width,
		"height":  result.Height,
		"bytes":   result.Bytes,
	})
}
