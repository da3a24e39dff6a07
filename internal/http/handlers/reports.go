package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/domain/category"
	"github.com/geocoder89/kinerjahub/internal/domain/report"
	"github.com/gin-gonic/gin"
)

type ReportsService interface {
	Create(ctx context.Context, id auth.Identity, req report.CreateRequest) (report.Report, error)
	List(ctx context.Context, id auth.Identity, requestedUnit *int64) ([]report.Report, error)
	Get(ctx context.Context, id auth.Identity, reportID int64) (report.Report, error)
	Update(ctx context.Context, id auth.Identity, reportID int64, req report.UpdateRequest) (report.Report, error)
	Delete(ctx context.Context, id auth.Identity, reportID int64) error
	ListCategories(ctx context.Context) ([]category.Category, error)
}

type ReportsHandler struct {
	svc ReportsService
}

func NewReportsHandler(svc ReportsService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) Create(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var req report.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	r, err := h.svc.Create(cctx, id, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusCreated, "Report created.", r)
}

// List honours ?unitKerjaId= for roles allowed to see every unit.
func (h *ReportsHandler) List(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	unitID, ok := optionalQueryID(ctx, "unitKerjaId")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	reports, err := h.svc.List(cctx, id, unitID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondList(ctx, "", reports, len(reports))
}

func (h *ReportsHandler) Get(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	reportID, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	r, err := h.svc.Get(cctx, id, reportID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "", r)
}

func (h *ReportsHandler) Update(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	reportID, ok := pathID(ctx)
	if !ok {
		return
	}

	var req report.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	r, err := h.svc.Update(cctx, id, reportID, req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "Report updated.", r)
}

func (h *ReportsHandler) Delete(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	reportID, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	if err := h.svc.Delete(cctx, id, reportID); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *ReportsHandler) Categories(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	cats, err := h.svc.ListCategories(cctx)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondListWithETag(ctx, "", cats, len(cats))
}
