// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wneessen/installer-finder/internal/logger"
	"github.com/wneessen/installer-finder/internal/matching"
	"github.com/wneessen/installer-finder/internal/presenter"
)

type NearbyRequest struct {
	Address     string   `form:"address" binding:"required"`
	MaxDistance *float64 `form:"max_distance"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (s *Server) nearbyInstallers(c *gin.Context) {
	var req NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxDistance != nil && math.IsNaN(*req.MaxDistance) {
		c.JSON(http.StatusBadRequest, gin.H{"error": matching.ErrInvalidDistance.Error()})
		return
	}

	result, err := s.searcher.Search(c.Request.Context(), req.Address, req.MaxDistance)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.Status(499)
			return
		}
		s.logger.Error("installer search failed", slog.String("address", req.Address), logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": matching.ErrSearchFailed.Error()})
		return
	}

	c.JSON(http.StatusOK, presenter.BuildJSON(result))
}
