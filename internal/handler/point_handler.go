package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recycleadmin/internal/form"
	"recycleadmin/internal/model"
	"recycleadmin/internal/notify"
	"recycleadmin/internal/points"
)

const promptDeletePoint = "Bạn có chắc muốn xóa điểm này?"

type PointHandler struct {
	*ResourceHandler[model.CollectionPoint, form.PointForm]
	points Crud[model.CollectionPoint]
}

func NewPointHandler(store Crud[model.CollectionPoint], notifier notify.Notifier, logger *zap.Logger) *PointHandler {
	return &PointHandler{
		points: store,
		ResourceHandler: NewResourceHandler(ResourceDef[model.CollectionPoint, form.PointForm]{
			Name:  "collection point",
			Label: "điểm thu gom",
			Parse: form.PointForm.Parse,
			WithID: func(p model.CollectionPoint, id int) model.CollectionPoint {
				p.ID = id
				return p
			},
			ConfirmDelete: promptDeletePoint,
		}, store, notifier, logger),
	}
}

func (h *PointHandler) Register(g *gin.RouterGroup) {
	g.GET("/nearby", h.Nearby)
	h.ResourceHandler.Register(g)
}

// Nearby GET /points/nearby?lat=&lng=&radius_km=
func (h *PointHandler) Nearby(c *gin.Context) {
	q, err := form.ParseNearby(c.Query("lat"), c.Query("lng"), c.Query("radius_km"))
	if err != nil {
		respondError(c, h.logger, "nearby points", err)
		return
	}
	all, err := h.points.List(c.Request.Context())
	if err != nil {
		h.failure(c, "load collection points", err)
		return
	}

	items := points.Nearby(all, q.Lat, q.Lng, q.RadiusKm)
	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"radius_km": q.RadiusKm,
	})
}
