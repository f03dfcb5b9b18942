package handler

import (
	"context"
	"net/http"

	"grain-auction/internal/catalog"
	"grain-auction/internal/lifecycle"
	"grain-auction/internal/models"
	"grain-auction/services/bidding/helpers"
	"grain-auction/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	ListAuctions(ctx context.Context, filter *models.Status) ([]models.AuctionSummary, error)
	GetAuction(ctx context.Context, auctionID string) (models.AuctionSummary, error)
	CreateAuction(ctx context.Context, actorID string, in models.NewAuction) (models.Auction, error)
	PlaceBid(ctx context.Context, actorID string, in models.NewBid) (models.BidPlacement, error)
	ListBids(ctx context.Context, actorID, auctionID string) ([]models.Bid, error)
	SelectWinner(ctx context.Context, actorID, auctionID, bidID string) (models.WinnerSelection, error)
	Grains() []catalog.Grain
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ListAuctionsHandler handles GET /auctions?status=
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	var filter *models.Status
	if raw := c.Query("status"); raw != "" {
		status, err := lifecycle.ParseStatus(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err, "invalid status filter")
			utils.Warn("ListAuctionsHandler: invalid status filter", map[string]any{"status": raw})
			return
		}
		filter = &status
	}

	auctions, err := h.service.ListAuctions(c.Request.Context(), filter)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, nil)
		return
	}
	if auctions == nil {
		auctions = []models.AuctionSummary{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	utils.Debug("ListAuctionsHandler: auctions retrieved", map[string]any{"count": len(auctions)})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, auction, "auction retrieved successfully")
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	actorID := helpers.ActorID(c)
	auction, err := h.service.CreateAuction(c.Request.Context(), actorID, models.NewAuction{
		GrainID:       req.GrainID,
		Quantity:      req.Quantity,
		StartingPrice: req.StartingPrice,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, map[string]any{
			"user_id":  actorID,
			"grain_id": req.GrainID,
		})
		return
	}

	resp := helpers.CreateAuctionResponse{AuctionID: auction.AuctionID, Status: string(auction.Status)}
	utils.JSONResponse(c, http.StatusCreated, resp, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"user_id":    actorID,
	})
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	auctionID := c.Param("auction_id")
	actorID := helpers.ActorID(c)
	placement, err := h.service.PlaceBid(c.Request.Context(), actorID, models.NewBid{
		AuctionID:        auctionID,
		Amount:           req.Amount,
		PaymentType:      models.PaymentType(req.PaymentType),
		DeliveryLocation: req.DeliveryLocation,
	})
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    actorID,
			"amount":     req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, placement, "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     placement.Bid.BidID,
		"auction_id": auctionID,
		"user_id":    actorID,
		"amount":     placement.Bid.Amount.String(),
		"rank":       placement.Rank,
	})
}

// ListBidsHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) ListBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	actorID := helpers.ActorID(c)
	bids, err := h.service.ListBids(c.Request.Context(), actorID, auctionID)
	if err != nil {
		helpers.RespondError(c, "ListBidsHandler", err, map[string]any{"auction_id": auctionID, "user_id": actorID})
		return
	}
	if bids == nil {
		bids = []models.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	utils.Debug("ListBidsHandler: bids retrieved", map[string]any{"auction_id": auctionID, "count": len(bids)})
}

// SelectWinnerHandler handles POST /auctions/:auction_id/winner
func (h *AuctionHandler) SelectWinnerHandler(c *gin.Context) {
	var req helpers.SelectWinnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SelectWinnerHandler", err)
		return
	}

	auctionID := c.Param("auction_id")
	actorID := helpers.ActorID(c)
	selection, err := h.service.SelectWinner(c.Request.Context(), actorID, auctionID, req.BidID)
	if err != nil {
		helpers.RespondError(c, "SelectWinnerHandler", err, map[string]any{
			"auction_id": auctionID,
			"bid_id":     req.BidID,
			"user_id":    actorID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, selection, "winner selected successfully")
	helpers.LogSuccess("SelectWinnerHandler", "winner selected successfully", map[string]any{
		"auction_id": auctionID,
		"bid_id":     req.BidID,
		"notified":   selection.Notified,
	})
}

// ListGrainsHandler handles GET /grains
func (h *AuctionHandler) ListGrainsHandler(c *gin.Context) {
	grains := h.service.Grains()
	if grains == nil {
		grains = []catalog.Grain{}
	}
	utils.JSONResponse(c, http.StatusOK, grains, "grains retrieved successfully")
}
