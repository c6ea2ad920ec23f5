package datamodel

import (
	activityDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/activity"
	associationDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/association"
	periodDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/period"
	userDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/user"
)

// Models lists every table the service owns.
func Models() []interface{} {
	return []interface{}{
		&userDatamodel.User{},
		&activityDatamodel.Activity{},
		&periodDatamodel.EvaluationPeriod{},
		&associationDatamodel.Association{},
	}
}
