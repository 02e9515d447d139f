package app

import (
	"time"

	"github.com/openshelf/catalogd/internal/domain"
	"go.uber.org/zap"
)

// checkProducts seeds a handful of demo catalog entries for fresh installs.
// Existing records are never touched.
func (a *Application) checkProducts() {
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		zap.L().Error("failed to count products for seeding", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	defaultProducts := []domain.Product{
		{Name: "Ceramic Mug", Price: 9.99, Category: "kitchen", Description: "Stoneware mug, 350ml", InStock: true},
		{Name: "Chef Knife", Price: 42.5, Category: "kitchen", Description: "8 inch stainless blade", InStock: true},
		{Name: "Desk Lamp", Price: 24.0, Category: "office", Description: "Warm LED, USB powered", InStock: true},
		{Name: "Notebook A5", Price: 4.75, Category: "office", Description: "Dotted, 120 pages", InStock: false},
	}

	for _, p := range defaultProducts {
		p.ID = a.idgen.Generate().Int64()
		p.ImageURL = domain.PlaceholderImageURL
		p.CreatedAt = time.Now()
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to create default product",
				zap.String("name", p.Name), zap.Error(err))
		} else {
			zap.L().Info("initialized default product", zap.String("name", p.Name))
		}
	}
}
