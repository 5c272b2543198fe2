package easypay

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/shared"
)

var (
	ErrGatewayError       = errors.New("easypay responded with an error")
	ErrGatewayUnavailable = errors.New("easypay is unreachable")
	ErrInvalidResponse    = errors.New("easypay returned an unexpected payload")
)

// Client issues MB references and queries their settlement status. The
// gateway is the only network-bound collaborator of the payment ledger.
type Client interface {
	IssueMbReference(ctx context.Context, request ReferenceRequest) (ReferenceResult, error)
	GetPaymentStatus(ctx context.Context, externalId string) (StatusResult, error)
}

type ReferenceRequest struct {
	Amount        float64
	Key           string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// ReferenceResult is the MB triplet the member uses at an ATM.
type ReferenceResult struct {
	Id        string
	Entity    string
	Reference string
	Amount    float64
}

type StatusResult struct {
	Id     string
	Status string
}

type DefaultClient struct {
	Config *shared.AppConfig `inject:""`
	Logger *shared.Logger    `inject:""`
}

type singlePaymentRequest struct {
	Type     string         `json:"type"`
	Capture  captureDetails `json:"capture"`
	Method   string         `json:"method"`
	Value    float64        `json:"value"`
	Key      string         `json:"key"`
	Customer customer       `json:"customer"`
}

type captureDetails struct {
	Descriptive    string `json:"descriptive"`
	TransactionKey string `json:"transaction_key"`
}

type customer struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	PhoneIndicative string `json:"phone_indicative"`
	Key             string `json:"key"`
}

type singlePaymentResponse struct {
	Id     string `json:"id"`
	Method struct {
		Entity    string `json:"entity"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"method"`
}

func (c *DefaultClient) IssueMbReference(ctx context.Context, request ReferenceRequest) (ReferenceResult, error) {
	phone := request.CustomerPhone
	if phone == "" {
		phone = "910000000"
	}

	body, err := json.Marshal(singlePaymentRequest{
		Type:    "sale",
		Capture: captureDetails{Descriptive: "Quota Mensal CDP", TransactionKey: request.Key},
		Method:  "mb",
		Value:   request.Amount,
		Key:     request.Key,
		Customer: customer{
			Name:            request.CustomerName,
			Email:           request.CustomerEmail,
			Phone:           phone,
			PhoneIndicative: "+351",
			Key:             request.CustomerEmail,
		},
	})
	if err != nil {
		return ReferenceResult{}, errors.Wrap(err, "failed to json encode the reference request")
	}

	req, err := http.NewRequest(http.MethodPost, c.Config.EasypayBaseUrl, bytes.NewReader(body))
	if err != nil {
		return ReferenceResult{}, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	b, err := c.performRequest(ctx, req)
	if err != nil {
		return ReferenceResult{}, err
	}

	payload := singlePaymentResponse{}
	if err := json.Unmarshal(b, &payload); err != nil {
		return ReferenceResult{}, errors.Wrap(ErrInvalidResponse, err.Error())
	}
	if payload.Id == "" || payload.Method.Reference == "" {
		return ReferenceResult{}, ErrInvalidResponse
	}

	return ReferenceResult{
		Id:        payload.Id,
		Entity:    payload.Method.Entity,
		Reference: payload.Method.Reference,
		Amount:    request.Amount,
	}, nil
}

func (c *DefaultClient) GetPaymentStatus(ctx context.Context, externalId string) (StatusResult, error) {
	req, err := http.NewRequest(http.MethodGet, c.Config.EasypayBaseUrl+"/"+externalId, nil)
	if err != nil {
		return StatusResult{}, errors.Wrap(err, "failed to build request")
	}

	b, err := c.performRequest(ctx, req)
	if err != nil {
		return StatusResult{}, err
	}

	payload := singlePaymentResponse{}
	if err := json.Unmarshal(b, &payload); err != nil {
		return StatusResult{}, errors.Wrap(ErrInvalidResponse, err.Error())
	}
	if payload.Method.Status == "" {
		return StatusResult{}, ErrInvalidResponse
	}

	return StatusResult{Id: externalId, Status: payload.Method.Status}, nil
}

func (c *DefaultClient) performRequest(ctx context.Context, r *http.Request) ([]byte, error) {
	timeout := time.Duration(c.Config.EasypayTimeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r = r.WithContext(ctx)
	r.Header.Set("AccountId", c.Config.EasypayAccountId)
	r.Header.Set("ApiKey", c.Config.EasypayApiKey)

	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		// timeouts and refused connections both surface as unavailability
		return nil, errors.Wrap(ErrGatewayUnavailable, err.Error())
	}
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(ErrGatewayUnavailable, err.Error())
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return b, nil
	}
	return nil, errors.Wrapf(ErrGatewayError, "easypay responded with status code %v, body: %s", resp.StatusCode, b)
}
