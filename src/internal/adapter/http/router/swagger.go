package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Expense Limit Service API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Expense Limit Service API",
    "version": "1.0.0"
  },
  "paths": {
    "/api/bank": {
      "post": {
        "summary": "Record a bank transaction and evaluate it against the monthly limit",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/BankTransactionRequest"}
            }
          }
        },
        "responses": {
          "200": {"description": "Transaction recorded"},
          "400": {"description": "Malformed request"},
          "422": {"description": "Transaction rejected"},
          "503": {"description": "Exchange rates unavailable"}
        }
      }
    },
    "/api/client": {
      "post": {
        "summary": "Set a new monthly limit",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/SetLimitRequest"}
            }
          }
        },
        "responses": {
          "200": {"description": "Limit set"},
          "400": {"description": "Validation failed"}
        }
      }
    },
    "/api/client/{account}": {
      "get": {
        "summary": "List every limit of an account",
        "parameters": [{"$ref": "#/components/parameters/Account"}],
        "responses": {
          "200": {"description": "Limits ordered by limit_datetime"}
        }
      }
    },
    "/api/client/transaction/{account}": {
      "get": {
        "summary": "List transactions that exceeded the limit, with the limit they were evaluated against",
        "parameters": [{"$ref": "#/components/parameters/Account"}],
        "responses": {
          "200": {"description": "Exceeded transactions ordered by datetime"}
        }
      }
    },
    "/api/rates": {
      "get": {
        "summary": "Latest exchange-rate snapshot",
        "responses": {
          "200": {"description": "Rates quoted in the reference currency"},
          "404": {"description": "No snapshot stored yet"}
        }
      }
    },
    "/healthz": {
      "get": {
        "summary": "Liveness check",
        "responses": {
          "200": {"description": "Service is up"},
          "503": {"description": "Database unavailable"}
        }
      }
    }
  },
  "components": {
    "parameters": {
      "Account": {
        "name": "account",
        "in": "path",
        "required": true,
        "schema": {"type": "string"}
      }
    },
    "schemas": {
      "BankTransactionRequest": {
        "type": "object",
        "required": ["account_from", "account_to", "currency_shortname", "Sum", "expense_category", "datetime"],
        "properties": {
          "account_from": {"type": "string"},
          "account_to": {"type": "string"},
          "currency_shortname": {"type": "string", "enum": ["KZT", "USD", "EUR", "RUB"]},
          "Sum": {"type": "number"},
          "expense_category": {"type": "string", "enum": ["PRODUCT", "SERVICE"]},
          "datetime": {"type": "string", "format": "date-time"}
        }
      },
      "SetLimitRequest": {
        "type": "object",
        "required": ["account_from", "limit_sum", "limit_currency_shortname", "expense_category"],
        "properties": {
          "account_from": {"type": "string"},
          "limit_sum": {"type": "number"},
          "limit_currency_shortname": {"type": "string", "enum": ["KZT", "USD", "EUR", "RUB"]},
          "expense_category": {"type": "string", "enum": ["PRODUCT", "SERVICE"]}
        }
      }
    }
  }
}`
