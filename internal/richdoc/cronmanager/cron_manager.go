// Пакет cronmanager запускает периодические задачи сервера: автосохранение открытых сессий
// и очистку старых ревизий.
package cronmanager

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Job struct {
	Func     func()
	Schedule string
}

type JobRegistry map[string]Job

type CronManager struct {
	dispatcher *cron.Cron
	mu         sync.Mutex
	entries    map[string]cron.EntryID
	registry   JobRegistry
}

func NewCronManager(registry JobRegistry) *CronManager {
	return &CronManager{
		dispatcher: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		entries:    make(map[string]cron.EntryID),
		registry:   registry,
	}
}

// LoadJobs заново планирует все задачи реестра. Ошибки расписаний собираются,
// задачи с корректным расписанием остаются запланированными.
func (cm *CronManager) LoadJobs() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name, id := range cm.entries {
		cm.dispatcher.Remove(id)
		delete(cm.entries, name)
	}

	var failed []string
	for name, job := range cm.registry {
		id, err := cm.dispatcher.AddFunc(job.Schedule, wrap(name, job.Func))
		if err != nil {
			slog.Error("Add cron job", "name", name, "schedule", job.Schedule, "err", err)
			failed = append(failed, name)
			continue
		}
		cm.entries[name] = id
	}
	if len(failed) > 0 {
		return fmt.Errorf("invalid schedule for jobs %v", failed)
	}
	return nil
}

// Next возвращает время следующего запуска задачи, нулевое время для незапланированной
func (cm *CronManager) Next(name string) time.Time {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	id, ok := cm.entries[name]
	if !ok {
		return time.Time{}
	}
	return cm.dispatcher.Entry(id).Next
}

func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if id, ok := cm.entries[name]; ok {
		cm.dispatcher.Remove(id)
		delete(cm.entries, name)
	}
}

func (cm *CronManager) Start() {
	cm.dispatcher.Start()
}

// Stop ждет завершения выполняющихся задач
func (cm *CronManager) Stop() {
	<-cm.dispatcher.Stop().Done()
}

func wrap(name string, f func()) func() {
	return func() {
		start := time.Now()
		f()
		slog.Debug("Cron job done", "name", name, "took", time.Since(start))
	}
}
