// Package docs holds the Swagger document served under /swagger outside production.
// Regenerate it with `swag init -g cmd/ledger_backend/main.go -o cmd/docs` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/companies/{company_id}/accounts/{account_id}/activity": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Opening balance, movement and closing balance of the account within a period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Account activity in a period",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Account ID",
                        "name": "account_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AccountActivity"
                        }
                    },
                    "400": {
                        "description": "periodId is required",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Account or period not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/accounts/{account_id}/balance": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Account balance",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Account ID",
                        "name": "account_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Cutoff date (YYYY-MM-DD)",
                        "name": "asOf",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AccountBalance"
                        }
                    },
                    "400": {
                        "description": "Invalid asOf date",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/accounts/{account_id}/transactions": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Lines of the account in a date window, each with its running balance",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Account transactions",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Account ID",
                        "name": "account_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "From date (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "To date (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.AccountTransactionsResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid date",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/balances": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Balances of all accounts",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Cutoff date (YYYY-MM-DD)",
                        "name": "asOf",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.LedgerBalances"
                        }
                    },
                    "400": {
                        "description": "Invalid asOf date",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/journals": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Validates a balanced journal against period and account rules and commits it under the next number",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journals"
                ],
                "summary": "Post a journal",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Journal and its lines",
                        "name": "journal",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateJournalRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.Journal"
                        }
                    },
                    "400": {
                        "description": "Invalid request format",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Concurrent post took the number",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "422": {
                        "description": "Rejected by a posting rule",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to post journal",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Returns one page of journals ordered by date then number",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journals"
                ],
                "summary": "List journals",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "default": 20
                    },
                    {
                        "description": "Token from the previous page",
                        "name": "nextToken",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "From date (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "To date (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Only journals touching this account",
                        "name": "accountId",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Filter on the reversed flag",
                        "name": "reversed",
                        "in": "query",
                        "required": false,
                        "type": "boolean"
                    },
                    {
                        "description": "Matches description, reference or number",
                        "name": "search",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ListJournalsResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid query parameters",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list journals",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/journals/{journal_id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Retrieves a journal and its lines by journal ID",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journals"
                ],
                "summary": "Get a journal",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Journal ID",
                        "name": "journal_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.Journal"
                        }
                    },
                    "404": {
                        "description": "Journal not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to retrieve journal",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/journals/{journal_id}/reverse": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Posts the mirror image of a journal dated today and links the two",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journals"
                ],
                "summary": "Reverse a journal",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Journal ID",
                        "name": "journal_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.Journal"
                        }
                    },
                    "404": {
                        "description": "Journal not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Journal already reversed",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "422": {
                        "description": "Period closed or no period for today",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to reverse journal",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/periods": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Adds an open period. Its range must not overlap an existing period.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Create an accounting period",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period details",
                        "name": "period",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreatePeriodRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AccountingPeriod"
                        }
                    },
                    "400": {
                        "description": "Invalid request format",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Overlaps an existing period",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "422": {
                        "description": "End before start",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to create period",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Lists periods by start date with the number of journals posted into each",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "List accounting periods",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Only periods starting in this year",
                        "name": "year",
                        "in": "query",
                        "required": false,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.PeriodSummary"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid query parameters",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list periods",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/periods/current": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Returns the period whose range contains date, today when omitted",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Get the period containing a date",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Date (YYYY-MM-DD)",
                        "name": "date",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AccountingPeriod"
                        }
                    },
                    "400": {
                        "description": "Invalid date",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "No period covers the date",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/periods/{period_id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Get an accounting period",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period ID",
                        "name": "period_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AccountingPeriod"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Removes a period no journal was posted into. Periods with journals must be closed instead.",
                "tags": [
                    "periods"
                ],
                "summary": "Delete an accounting period",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period ID",
                        "name": "period_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "403": {
                        "description": "Period has journals",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to delete period",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/periods/{period_id}/close": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Books the closing journal into retained earnings and marks the period closed",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Close an accounting period",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period ID",
                        "name": "period_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.CloseResult"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Period already closed",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "422": {
                        "description": "No equity account for retained earnings",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to close period",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/reports/analytics": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Revenue, expense and signed net income of the most recent periods, oldest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Income analytics",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Number of periods (default 6)",
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.PeriodAnalytics"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid query parameters",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate analytics",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/reports/balance-sheet": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Assets, liabilities and equity as of the period end",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Balance sheet",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.BalanceSheet"
                        }
                    },
                    "400": {
                        "description": "periodId is required",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate balance sheet",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/reports/profit-and-loss": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Revenue and expense movement within a period, excluding its closing journal",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Profit and loss",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.ProfitAndLoss"
                        }
                    },
                    "400": {
                        "description": "periodId is required",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate profit and loss report",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/reports/summary": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Headline figures and ratios of a period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Financial summary",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period ID",
                        "name": "periodId",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.FinancialSummary"
                        }
                    },
                    "400": {
                        "description": "periodId is required",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate financial summary",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/companies/{company_id}/reports/trial-balance": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Balances of every account as of the period end, as of asOf, or today",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Trial balance",
                "parameters": [
                    {
                        "description": "Company ID",
                        "name": "company_id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Period ID, wins over asOf",
                        "name": "periodId",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Cutoff date (YYYY-MM-DD)",
                        "name": "asOf",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TrialBalance"
                        }
                    },
                    "400": {
                        "description": "Invalid query parameters",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate trial balance",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.Account": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "parentAccountID": {
                    "type": "string"
                },
                "postable": {
                    "type": "boolean"
                },
                "locked": {
                    "type": "boolean"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "createdBy": {
                    "type": "string"
                },
                "lastUpdatedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "lastUpdatedBy": {
                    "type": "string"
                }
            }
        },
        "domain.AccountActivity": {
            "type": "object",
            "properties": {
                "account": {
                    "$ref": "#/definitions/domain.Account"
                },
                "period": {
                    "$ref": "#/definitions/domain.AccountingPeriod"
                },
                "openingBalance": {
                    "$ref": "#/definitions/domain.AccountBalance"
                },
                "periodDebit": {
                    "type": "string",
                    "example": "0"
                },
                "periodCredit": {
                    "type": "string",
                    "example": "0"
                },
                "closingBalance": {
                    "$ref": "#/definitions/domain.AccountBalance"
                }
            }
        },
        "domain.AccountAmount": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "amount": {
                    "type": "string",
                    "example": "0"
                }
            }
        },
        "domain.AccountBalance": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "debitTotal": {
                    "type": "string",
                    "example": "0"
                },
                "creditTotal": {
                    "type": "string",
                    "example": "0"
                },
                "balance": {
                    "type": "string",
                    "example": "0"
                },
                "side": {
                    "type": "string"
                },
                "lineCount": {
                    "type": "integer"
                }
            }
        },
        "domain.AccountingPeriod": {
            "type": "object",
            "properties": {
                "periodID": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "endDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "status": {
                    "type": "string"
                },
                "closedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "closedBy": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "createdBy": {
                    "type": "string"
                },
                "lastUpdatedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "lastUpdatedBy": {
                    "type": "string"
                }
            }
        },
        "domain.BalanceSheet": {
            "type": "object",
            "properties": {
                "period": {
                    "$ref": "#/definitions/domain.AccountingPeriod"
                },
                "asOf": {
                    "type": "string",
                    "format": "date-time"
                },
                "assets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "liabilities": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "equity": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "currentEarnings": {
                    "type": "string",
                    "example": "0"
                },
                "netIncome": {
                    "type": "string",
                    "example": "0"
                },
                "totalAssets": {
                    "type": "string",
                    "example": "0"
                },
                "totalLiabilities": {
                    "type": "string",
                    "example": "0"
                },
                "totalEquity": {
                    "type": "string",
                    "example": "0"
                },
                "isBalanced": {
                    "type": "boolean"
                }
            }
        },
        "domain.CloseResult": {
            "type": "object",
            "properties": {
                "period": {
                    "$ref": "#/definitions/domain.AccountingPeriod"
                },
                "journal": {
                    "$ref": "#/definitions/domain.Journal"
                },
                "netIncome": {
                    "type": "string",
                    "example": "0"
                },
                "retainedEarningsAccountID": {
                    "type": "string"
                }
            }
        },
        "domain.FinancialSummary": {
            "type": "object",
            "properties": {
                "period": {
                    "$ref": "#/definitions/domain.AccountingPeriod"
                },
                "totalRevenue": {
                    "type": "string",
                    "example": "0"
                },
                "totalExpenses": {
                    "type": "string",
                    "example": "0"
                },
                "netIncome": {
                    "type": "string",
                    "example": "0"
                },
                "totalAssets": {
                    "type": "string",
                    "example": "0"
                },
                "totalLiabilities": {
                    "type": "string",
                    "example": "0"
                },
                "totalEquity": {
                    "type": "string",
                    "example": "0"
                },
                "cashBalance": {
                    "type": "string",
                    "example": "0"
                },
                "profitMargin": {
                    "type": "string",
                    "example": "0"
                },
                "debtToEquity": {
                    "type": "string",
                    "example": "0"
                }
            }
        },
        "domain.Journal": {
            "type": "object",
            "properties": {
                "journalID": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "date": {
                    "type": "string",
                    "format": "date-time"
                },
                "description": {
                    "type": "string"
                },
                "reference": {
                    "type": "string"
                },
                "periodID": {
                    "type": "string"
                },
                "reversed": {
                    "type": "boolean"
                },
                "reversedByID": {
                    "type": "string"
                },
                "reversalOfID": {
                    "type": "string"
                },
                "closing": {
                    "type": "boolean"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.JournalLine"
                    }
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "createdBy": {
                    "type": "string"
                },
                "lastUpdatedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "lastUpdatedBy": {
                    "type": "string"
                }
            }
        },
        "domain.JournalLine": {
            "type": "object",
            "properties": {
                "lineID": {
                    "type": "string"
                },
                "journalID": {
                    "type": "string"
                },
                "accountID": {
                    "type": "string"
                },
                "debit": {
                    "type": "string",
                    "example": "0"
                },
                "credit": {
                    "type": "string",
                    "example": "0"
                },
                "memo": {
                    "type": "string"
                },
                "seq": {
                    "type": "integer"
                }
            }
        },
        "domain.LedgerBalances": {
            "type": "object",
            "properties": {
                "asOf": {
                    "type": "string",
                    "format": "date-time"
                },
                "balances": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountBalance"
                    }
                },
                "totalDebit": {
                    "type": "string",
                    "example": "0"
                },
                "totalCredit": {
                    "type": "string",
                    "example": "0"
                },
                "isBalanced": {
                    "type": "boolean"
                }
            }
        },
        "domain.LedgerEntry": {
            "type": "object",
            "properties": {
                "journalID": {
                    "type": "string"
                },
                "journalNumber": {
                    "type": "string"
                },
                "lineID": {
                    "type": "string"
                },
                "date": {
                    "type": "string",
                    "format": "date-time"
                },
                "description": {
                    "type": "string"
                },
                "reference": {
                    "type": "string"
                },
                "memo": {
                    "type": "string"
                },
                "debit": {
                    "type": "string",
                    "example": "0"
                },
                "credit": {
                    "type": "string",
                    "example": "0"
                },
                "runningBalance": {
                    "type": "string",
                    "example": "0"
                },
                "runningSide": {
                    "type": "string"
                }
            }
        },
        "domain.PeriodAnalytics": {
            "type": "object",
            "properties": {
                "periodID": {
                    "type": "string"
                },
                "period": {
                    "type": "string"
                },
                "month": {
                    "type": "string"
                },
                "revenue": {
                    "type": "string",
                    "example": "0"
                },
                "expense": {
                    "type": "string",
                    "example": "0"
                },
                "netIncome": {
                    "type": "string",
                    "example": "0"
                }
            }
        },
        "domain.PeriodSummary": {
            "type": "object",
            "properties": {
                "periodID": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "endDate": {
                    "type": "string",
                    "format": "date-time"
                },
                "status": {
                    "type": "string"
                },
                "closedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "closedBy": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "createdBy": {
                    "type": "string"
                },
                "lastUpdatedAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "lastUpdatedBy": {
                    "type": "string"
                },
                "journalCount": {
                    "type": "integer"
                }
            }
        },
        "domain.ProfitAndLoss": {
            "type": "object",
            "properties": {
                "period": {
                    "$ref": "#/definitions/domain.AccountingPeriod"
                },
                "revenue": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "expenses": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "totalRevenue": {
                    "type": "string",
                    "example": "0"
                },
                "totalExpenses": {
                    "type": "string",
                    "example": "0"
                },
                "netIncome": {
                    "type": "string",
                    "example": "0"
                },
                "result": {
                    "type": "string"
                }
            }
        },
        "domain.TrialBalance": {
            "type": "object",
            "properties": {
                "asOf": {
                    "type": "string",
                    "format": "date-time"
                },
                "periodID": {
                    "type": "string"
                },
                "sections": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.TrialBalanceSection"
                    }
                },
                "totalDebit": {
                    "type": "string",
                    "example": "0"
                },
                "totalCredit": {
                    "type": "string",
                    "example": "0"
                },
                "isBalanced": {
                    "type": "boolean"
                }
            }
        },
        "domain.TrialBalanceRow": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "debit": {
                    "type": "string",
                    "example": "0"
                },
                "credit": {
                    "type": "string",
                    "example": "0"
                }
            }
        },
        "domain.TrialBalanceSection": {
            "type": "object",
            "properties": {
                "category": {
                    "type": "string"
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.TrialBalanceRow"
                    }
                },
                "totalDebit": {
                    "type": "string",
                    "example": "0"
                },
                "totalCredit": {
                    "type": "string",
                    "example": "0"
                }
            }
        },
        "dto.AccountTransactionsResponse": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "entries": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.LedgerEntry"
                    }
                }
            }
        },
        "dto.CreateJournalLineRequest": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "debit": {
                    "type": "string",
                    "example": "0"
                },
                "credit": {
                    "type": "string",
                    "example": "0"
                },
                "memo": {
                    "type": "string"
                }
            },
            "required": [
                "accountID"
            ]
        },
        "dto.CreateJournalRequest": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "reference": {
                    "type": "string"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.CreateJournalLineRequest"
                    }
                }
            },
            "required": [
                "date",
                "description",
                "lines"
            ]
        },
        "dto.CreatePeriodRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string"
                },
                "endDate": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "startDate",
                "endDate"
            ]
        },
        "dto.ListJournalsResponse": {
            "type": "object",
            "properties": {
                "journals": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Journal"
                    }
                },
                "nextToken": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Ledger Engine API",
	Description:      "Multi-tenant double-entry ledger: journal posting, balances, period closing and financial reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
