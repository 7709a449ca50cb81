package store

import (
	"github.com/chrisjgf/ez-stablecoin/internal/store/workflowstatus"
)

type Store struct {
	WorkflowStatus workflowstatus.IStore
}

func New() *Store {
	return &Store{
		WorkflowStatus: workflowstatus.New(),
	}
}
