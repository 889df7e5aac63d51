package api

import (
	"github.com/ouvidorlabs/ouvidor/app/ai"
	"github.com/ouvidorlabs/ouvidor/app/company"
	"github.com/ouvidorlabs/ouvidor/app/coupon"
	"github.com/ouvidorlabs/ouvidor/app/database"
	"github.com/ouvidorlabs/ouvidor/app/tasks"
)

type Handler struct {
	companyRepo     database.CompanyRepository
	complaintRepo   database.ComplaintRepository
	configCache     *company.ConfigCache
	couponService   *coupon.Service
	analyzer        *ai.Analyzer
	responder       *ai.Responder
	scheduler       tasks.TaskSchedulerInterface
	providerFactory tasks.SessionProviderFactory
}

type editResponseRequest struct {
	Response string `json:"response" binding:"required"`
}
