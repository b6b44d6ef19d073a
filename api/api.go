package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/0xcafe-io/iz"
	"github.com/google/uuid"

	"finance-dashboard/internal/assistant"
	"finance-dashboard/internal/auth"
	"finance-dashboard/internal/contextutil"
	"finance-dashboard/internal/finance"
	"finance-dashboard/logging"
)

type Api struct {
	Service   *finance.Dashboard
	Assistant *assistant.Assistant
}

func NewApi(service *finance.Dashboard, assist *assistant.Assistant) *Api {
	return &Api{
		Service:   service,
		Assistant: assist,
	}
}

func requestContext(r *iz.Request) context.Context {
	return contextutil.WithTraceID(r.Context(), uuid.New().String())
}

// authorize resolves the Authorization header to a user id.
func (api *Api) authorize(ctx context.Context, r *iz.Request) (string, error) {
	token := r.Header.Get("Authorization")
	if token == "" {
		return "", fmt.Errorf("Authorization header is required")
	}
	userId, err := api.Service.CheckSession(ctx, token)
	if err != nil {
		return "", err
	}
	return userId, nil
}

// --- USER ENDPOINTS --- //

func (api *Api) SaveUserHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	var newUserReq SaveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&newUserReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	newUser := auth.NewUser{
		UserName:      newUserReq.UserName,
		FullName:      newUserReq.FullName,
		PasswordPlain: newUserReq.Password,
		Email:         newUserReq.Email,
	}

	token, err := api.Service.RegisterUser(ctx, newUser)
	if err != nil {
		msg := fmt.Sprintf("registration failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := UserCreatedResponse{
		Message: "Registration Completed",
		Token:   token,
	}
	return iz.Respond().Status(201).JSON(resp)
}

func (api *Api) LoginUserHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	var loginRequest UserLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	credentials := auth.UserCredentialsPure{
		UserName:      loginRequest.UserName,
		PasswordPlain: loginRequest.Password,
	}

	response := LoginResponse{}

	token, err := api.Service.GenerateSession(ctx, credentials)
	if err != nil {
		response.Message = err.Error()
		return iz.Respond().Status(httpStatusFromError(err)).JSON(response)
	}
	response.Message = "You've logged in successfully!"
	response.Token = token
	return iz.Respond().Status(200).JSON(response)
}

func (api *Api) LogoutUserHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	token := r.Header.Get("Authorization")
	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	if err := api.Service.LogoutUser(ctx, userId, token); err != nil {
		msg := fmt.Sprintf("logout failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("Logout successful.")
}

// --- ACCOUNT ENDPOINTS --- //

func (api *Api) CreateAccountHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var accountReq CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&accountReq); err != nil {
		logging.Logger.Errorf("Failed to parse create account request: %v", err)
		msg := fmt.Sprintf("failed to parse create account request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	account, err := api.Service.CreateAccount(ctx, userId, finance.CreateAccountRequest{
		Name:      accountReq.Name,
		Type:      accountReq.Type,
		Balance:   accountReq.Balance,
		IsDefault: accountReq.IsDefault,
	})
	if err != nil {
		msg := fmt.Sprintf("failed to create account: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(201).JSON(account)
}

func (api *Api) GetUserAccountsHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	accounts, err := api.Service.GetUserAccounts(ctx, userId)
	if err != nil {
		logging.Logger.Errorf("Failed to get user accounts: %v", err)
		msg := fmt.Sprintf("failed to get accounts: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(accounts)
}

func (api *Api) GetAccountByIdHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	accountId := r.PathValue("id")

	detail, err := api.Service.GetAccountWithTransactions(ctx, userId, accountId)
	if err != nil {
		msg := fmt.Sprintf("failed to get account: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(detail)
}

func (api *Api) UpdateDefaultAccountHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	accountId := r.PathValue("id")

	account, err := api.Service.UpdateDefaultAccount(ctx, userId, accountId)
	if err != nil {
		msg := fmt.Sprintf("failed to update default account: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(account)
}

// --- TRANSACTION ENDPOINTS --- //

func (api *Api) SaveTransactionHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var txnReq CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&txnReq); err != nil {
		logging.Logger.Errorf("Failed to parse save transaction request: %v", err)
		msg := fmt.Sprintf("failed to parse save transaction request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	domainReq, err := txnReq.ToDomain()
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	txn, err := api.Service.CreateTransaction(ctx, userId, domainReq)
	if err != nil {
		msg := fmt.Sprintf("failed to create transaction: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(201).JSON(txn)
}

func (api *Api) GetTransactionsByCategoryHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	category, limit, err := CategoryListParams(r.URL.Query())
	if err != nil {
		msg := fmt.Sprintf("invalid filter parameters: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	transactions, err := api.Service.GetTransactionsByCategory(ctx, userId, category, limit)
	if err != nil {
		logging.Logger.Errorf("Failed to get transactions by category: %v", err)
		msg := fmt.Sprintf("failed to get transactions: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(transactions)
}

// --- SUMMARY ENDPOINT --- //

func (api *Api) GetFinancialSummaryHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	summary, err := api.Service.GetFinancialSummary(ctx, userId)
	if err != nil {
		logging.Logger.Errorf("Failed to build financial summary: %v", err)
		return iz.Respond().Status(200).JSON(SummaryResponse{Success: false, Error: err.Error()})
	}
	return iz.Respond().Status(200).JSON(SummaryResponse{Success: true, Data: &summary})
}

// --- AI ENDPOINTS --- //

func (api *Api) ExecuteToolHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var toolReq ToolRequest
	if err := json.NewDecoder(r.Body).Decode(&toolReq); err != nil {
		msg := fmt.Sprintf("failed to parse tool request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	// failures come back inside the envelope, the HTTP call itself succeeds
	result := api.Assistant.Execute(ctx, userId, toolReq.Tool, toolReq.Parameters)
	return iz.Respond().Status(200).JSON(result)
}

func (api *Api) ChatHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var chatReq ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
		msg := fmt.Sprintf("failed to parse chat request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}
	if chatReq.Message == "" {
		return iz.Respond().Status(400).Text("message is required")
	}

	response, err := api.Assistant.Chat(ctx, userId, chatReq.Message, chatReq.History)
	if err != nil {
		logging.Logger.Errorf("AI chat failed: %v", err)
		msg := fmt.Sprintf("chat failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(response)
}

func (api *Api) AnalyzeAccountHandler(r *iz.Request) iz.Responder {
	ctx := requestContext(r)

	userId, err := api.authorize(ctx, r)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var analyzeReq AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&analyzeReq); err != nil {
		msg := fmt.Sprintf("failed to parse analyze request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}
	if analyzeReq.AccountID == "" || analyzeReq.Question == "" {
		return iz.Respond().Status(400).Text("question and account_id are required")
	}

	answer, err := api.Assistant.AnalyzeAccount(ctx, userId, analyzeReq.AccountID, analyzeReq.Question)
	if err != nil {
		logging.Logger.Errorf("AI analyze failed: %v", err)
		msg := fmt.Sprintf("analyze failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(AnalyzeResponse{Answer: answer})
}
