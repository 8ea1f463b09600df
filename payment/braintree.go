// Package payment talks to the Braintree GraphQL API.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/apperr"
	"storefront/models"
)

const (
	SandboxURL    = "https://payments.sandbox.braintree-api.com/graphql"
	ProductionURL = "https://payments.braintree-api.com/graphql"

	braintreeVersion = "2019-01-01"
	defaultTimeout   = 30 * time.Second
)

const clientTokenMutation = `mutation ClientToken($input: CreateClientTokenInput) {
  createClientToken(input: $input) {
    clientToken
  }
}`

// chargePaymentMethod 會授權並送出請款(submit for settlement)
const chargeMutation = `mutation Charge($input: ChargePaymentMethodInput!) {
  chargePaymentMethod(input: $input) {
    transaction {
      id
      legacyId
      status
      amount {
        value
        currencyCode
      }
      createdAt
    }
  }
}`

// 交易失敗的狀態
var failedStatuses = map[string]bool{
	"FAILED":              true,
	"GATEWAY_REJECTED":    true,
	"PROCESSOR_DECLINED":  true,
	"SETTLEMENT_DECLINED": true,
	"VOIDED":              true,
}

// MerchantAccountID 為空時使用Braintree帳戶的預設merchant account
type Credentials struct {
	Environment       string
	MerchantAccountID string
	PublicKey         string
	PrivateKey        string
	Timeout           time.Duration
}

// Braintree 透過GraphQL API取得client token及進行交易
type Braintree struct {
	creds   Credentials
	baseURL string
	client  *http.Client
}

func NewBraintree(creds Credentials) *Braintree {
	baseURL := SandboxURL
	if creds.Environment == "production" {
		baseURL = ProductionURL
	}
	timeout := creds.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Braintree{
		creds:   creds,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL 指定API位址(測試用)
func (b *Braintree) WithBaseURL(url string) *Braintree {
	b.baseURL = url
	return b
}

type SaleRequest struct {
	Amount decimal.Decimal
	Nonce  string
}

type graphQLRequest struct {
	Query     string      `json:"query"`
	Variables interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		ErrorClass string `json:"errorClass"`
	} `json:"extensions"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type clientTokenData struct {
	CreateClientToken struct {
		ClientToken string `json:"clientToken"`
	} `json:"createClientToken"`
}

type transaction struct {
	ID       string `json:"id"`
	LegacyID string `json:"legacyId"`
	Status   string `json:"status"`
	Amount   struct {
		Value        string `json:"value"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"amount"`
}

type chargeData struct {
	ChargePaymentMethod struct {
		Transaction json.RawMessage `json:"transaction"`
	} `json:"chargePaymentMethod"`
}

// 產生付款元件使用的client token
func (b *Braintree) ClientToken(ctx context.Context) (string, error) {
	var data clientTokenData
	err := b.do(ctx, graphQLRequest{
		Query:     clientTokenMutation,
		Variables: map[string]interface{}{"input": map[string]interface{}{}},
	}, &data)
	if err != nil {
		return "", err
	}
	if data.CreateClientToken.ClientToken == "" {
		return "", apperr.New(apperr.Upstream, "payment gateway returned no client token")
	}
	return data.CreateClientToken.ClientToken, nil
}

// 以nonce進行交易並送出請款
func (b *Braintree) Sale(ctx context.Context, req SaleRequest) (models.PaymentResult, error) {
	if strings.TrimSpace(req.Nonce) == "" {
		return models.PaymentResult{}, apperr.New(apperr.Validation, "payment nonce is required")
	}

	transactionInput := map[string]interface{}{
		"amount": req.Amount.StringFixed(2),
	}
	if b.creds.MerchantAccountID != "" {
		transactionInput["merchantAccountId"] = b.creds.MerchantAccountID
	}
	input := map[string]interface{}{
		"paymentMethodId": req.Nonce,
		"transaction":     transactionInput,
	}

	var data chargeData
	err := b.do(ctx, graphQLRequest{
		Query:     chargeMutation,
		Variables: map[string]interface{}{"input": input},
	}, &data)
	if err != nil {
		return models.PaymentResult{}, err
	}

	raw := data.ChargePaymentMethod.Transaction
	if len(raw) == 0 || string(raw) == "null" {
		return models.PaymentResult{}, apperr.New(apperr.Upstream, "payment gateway returned no transaction")
	}

	var tx transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return models.PaymentResult{}, apperr.Wrap(apperr.Upstream, "payment gateway returned an unreadable transaction", err)
	}

	amount, err := decimal.NewFromString(tx.Amount.Value)
	if err != nil {
		amount = req.Amount
	}

	result := models.PaymentResult{
		TransactionID: tx.ID,
		Status:        tx.Status,
		Amount:        amount,
		Currency:      tx.Amount.CurrencyCode,
		Success:       !failedStatuses[tx.Status],
		Raw:           raw,
	}
	if !result.Success {
		return result, apperr.New(apperr.Upstream, fmt.Sprintf("transaction %s: %s", tx.ID, strings.ToLower(tx.Status)))
	}
	return result, nil
}

func (b *Braintree) do(ctx context.Context, payload graphQLRequest, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.SetBasicAuth(b.creds.PublicKey, b.creds.PrivateKey)
	httpReq.Header.Set("Braintree-Version", braintreeVersion)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "payment gateway response unreadable", err)
	}

	var gqlResp graphQLResponse
	decodeErr := json.Unmarshal(respBody, &gqlResp)

	//GraphQL錯誤優先回報，訊息可直接顯示給使用者
	if decodeErr == nil && len(gqlResp.Errors) > 0 {
		messages := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			messages = append(messages, e.Message)
		}
		return apperr.New(apperr.Upstream, strings.Join(messages, "; "))
	}
	if resp.StatusCode != http.StatusOK {
		return apperr.Wrap(apperr.Upstream, fmt.Sprintf("payment gateway error (%d)", resp.StatusCode), fmt.Errorf("%s", respBody))
	}
	if decodeErr != nil {
		return apperr.Wrap(apperr.Upstream, "payment gateway response unreadable", decodeErr)
	}

	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return apperr.Wrap(apperr.Upstream, "payment gateway response unreadable", err)
	}
	return nil
}
