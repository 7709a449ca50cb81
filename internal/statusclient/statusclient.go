package statusclient

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/config"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/poll"
	"github.com/chrisjgf/ez-stablecoin/internal/view"
)

const statusPath = "/api/v1/status"

type client struct {
	resty        *resty.Client
	logger       *logger.Logger
	pollInterval time.Duration
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IStatusClient {
	return &client{
		resty: resty.New().
			SetBaseURL(appConfig.Pipeline.StatusAPIURL).
			SetTimeout(10 * time.Second),
		logger:       logger,
		pollInterval: appConfig.Pipeline.DepositPollInterval,
	}
}

func (c *client) Get() (*model.WorkflowStatus, error) {
	var envelope view.Response[model.WorkflowStatus]

	resp, err := c.resty.R().
		SetResult(&envelope).
		Get(statusPath)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("status fetch failed: %s", resp.Status())
	}

	return &envelope.Data, nil
}

func (c *client) Merge(update model.StatusUpdate) (*model.WorkflowStatus, error) {
	var envelope view.Response[model.WorkflowStatus]

	resp, err := c.resty.R().
		SetBody(update).
		SetResult(&envelope).
		Post(statusPath)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("status merge failed: %s", resp.Status())
	}

	return &envelope.Data, nil
}

func (c *client) WaitForDeposit() (float64, error) {
	var amount float64

	// unbounded: a deposit may take arbitrarily long to be keyed in
	err := poll.Until(poll.Config{MaxAttempts: 0, Interval: c.pollInterval}, func(attempt int) (bool, error) {
		status, err := c.Get()
		if err != nil {
			c.logger.Error("[WaitForDeposit] failed to read status", map[string]string{
				"attempt": strconv.Itoa(attempt),
				"error":   err.Error(),
			})
			return false, err
		}

		if status.Gbp <= 0 {
			c.logger.Info("[WaitForDeposit] waiting for nonzero GBP status")
			return false, nil
		}

		amount = status.Gbp
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	c.logger.Info("[WaitForDeposit] detected GBP deposit", map[string]string{
		"amount": strconv.FormatFloat(amount, 'f', -1, 64),
	})
	return amount, nil
}
