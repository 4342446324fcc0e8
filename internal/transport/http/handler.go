package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/richardliu001/payments-engine/internal/csvio"
	"github.com/richardliu001/payments-engine/internal/engine"
	"github.com/richardliu001/payments-engine/internal/repo"
	"github.com/richardliu001/payments-engine/internal/service"
)

func RegisterHandlers(r *gin.Engine, svc *service.SettlementService) {
	v1 := r.Group("/v1")
	{
		v1.POST("/batches", settleHandler(svc))
		v1.GET("/batches/:id", batchHandler(svc))
		v1.GET("/accounts/:id", accountHandler(svc))
	}
}

type accountResp struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// settleHandler accepts a CSV transaction batch in the request body and
// responds with the final snapshot. A batch validation failure maps to
// 422 with the diagnostic; a malformed body maps to 400.
func settleHandler(svc *service.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := csvio.Read(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := svc.Settle(c, records)
		if err != nil {
			var verr *engine.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		accounts := make([]accountResp, 0, len(res.Accounts))
		for _, a := range res.Accounts {
			accounts = append(accounts, accountResp{
				Client:    a.ClientID,
				Available: a.Available.String(),
				Held:      a.Held.String(),
				Total:     a.Total().String(),
				Locked:    a.Locked,
			})
		}
		c.JSON(http.StatusOK, gin.H{"batch_id": res.BatchID, "accounts": accounts})
	}
}

func batchHandler(svc *service.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch id"})
			return
		}
		b, err := svc.GetBatch(c, id)
		if err != nil {
			if errors.Is(err, repo.ErrBatchNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		resp := gin.H{"id": b.ID, "status": b.Status, "record_count": b.RecordCount, "created_at": b.CreatedAt}
		if b.Diagnostic != nil {
			resp["diagnostic"] = *b.Diagnostic
		}
		c.JSON(http.StatusOK, resp)
	}
}

func accountHandler(svc *service.SettlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 16)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
			return
		}
		snap, err := svc.GetAccount(c, uint16(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, accountResp{
			Client:    snap.ClientID,
			Available: snap.Available.String(),
			Held:      snap.Held.String(),
			Total:     snap.Total.String(),
			Locked:    snap.Locked,
		})
	}
}
