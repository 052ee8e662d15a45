package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskGenerateDueOrders = "plans.generate_due"

type GenerateDueOrdersPayload struct {
	// AsOf is the RFC3339 reference date the sweep should generate up to.
	AsOf string `json:"asOf"`
}

func NewGenerateDueOrdersTask(payload GenerateDueOrdersPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGenerateDueOrders, data), nil
}

func ParseGenerateDueOrdersPayload(task *asynq.Task) (GenerateDueOrdersPayload, error) {
	var payload GenerateDueOrdersPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GenerateDueOrdersPayload{}, err
	}
	return payload, nil
}
