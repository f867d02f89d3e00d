package api

import (
	"delphiwatch/app/database"
	"delphiwatch/app/rules"
	"delphiwatch/app/tasks"
)

type Handler struct {
	deliveries database.DeliveryRepository
	cursor     database.CursorRepository
	rulesCache *rules.Cache
	scheduler  tasks.TaskSchedulerInterface
	version    string
}

func NewHandler(deliveries database.DeliveryRepository, cursor database.CursorRepository,
	rulesCache *rules.Cache, scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		deliveries: deliveries,
		cursor:     cursor,
		rulesCache: rulesCache,
		scheduler:  scheduler,
		version:    version,
	}
}
