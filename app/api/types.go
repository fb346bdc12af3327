package api

import (
	"newsbrief/app/cache"
	"newsbrief/app/database"
	"newsbrief/app/tasks"
)

type Handler struct {
	sourceRepo     database.SourceRepository
	itemRepo       database.ItemRepository
	annotationRepo database.AnnotationRepository
	digestRepo     database.DigestRepository
	digestCache    *cache.Cache
	factory        *tasks.Factory
	scheduler      tasks.TaskSchedulerInterface
}
