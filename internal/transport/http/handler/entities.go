package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animal-shelter/internal/core/cache"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/service"
	"animal-shelter/internal/transport/http/ez"
)

// Adoptions 领养会改动物状态，写操作后同样清公开列表缓存
type Adoptions struct {
	Svc   *service.AdoptionService
	Cache *cache.Cache
	Log   *zap.Logger
}

func (h *Adoptions) Priority() int { return 20 }

func (h *Adoptions) MountAdmin(g *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[domain.Adoption, service.CreateAdoptionInput, service.UpdateAdoptionInput]{
		Group:   g,
		Path:    "/adoptions",
		Service: h.Svc,
		Hooks: ez.CrudHooks{AfterWrite: func(c *gin.Context, _ string) {
			invalidatePublic(c.Request.Context(), h.Cache, h.Log)
		}},
	})
}

type Adopters struct{ Svc *service.AdopterService }

func (h *Adopters) Priority() int { return 20 }

func (h *Adopters) MountAdmin(g *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[domain.Adopter, service.CreateAdopterInput, service.UpdateAdopterInput]{
		Group: g, Path: "/adopters", Service: h.Svc,
	})
}

type VetRecords struct{ Svc *service.VetRecordService }

func (h *VetRecords) Priority() int { return 30 }

func (h *VetRecords) MountAdmin(g *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[domain.VeterinaryRecord, service.CreateVetRecordInput, service.UpdateVetRecordInput]{
		Group: g, Path: "/vet-records", Service: h.Svc,
	})
}

type Volunteers struct{ Svc *service.VolunteerService }

func (h *Volunteers) Priority() int { return 30 }

func (h *Volunteers) MountAdmin(g *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[domain.Volunteer, service.CreateVolunteerInput, service.UpdateVolunteerInput]{
		Group: g, Path: "/volunteers", Service: h.Svc,
	})
}

type Donations struct{ Svc *service.DonationService }

func (h *Donations) Priority() int { return 30 }

func (h *Donations) MountAdmin(g *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[domain.Donation, service.CreateDonationInput, service.UpdateDonationInput]{
		Group: g, Path: "/donations", Service: h.Svc,
	})
}
