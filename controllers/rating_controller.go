package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

type RatingController struct{ ratings *services.RatingService }

func NewRatingController(ratings *services.RatingService) *RatingController {
	return &RatingController{ratings: ratings}
}

// Rating is range-checked by the service.
type rateReq struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// POST /orders/:id/rating
func (rc *RatingController) Create(c *gin.Context) {
	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	r, err := rc.ratings.Create(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"), req.Rating, req.Review)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, r)
}

// GET /sellers/:id/ratings
func (rc *RatingController) ForSeller(c *gin.Context) {
	out, err := rc.ratings.ForSeller(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}
