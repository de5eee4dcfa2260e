package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"

	"github.com/dekarrin/pegquest"
	"github.com/dekarrin/pegquest/internal/peg/config"
	"github.com/dekarrin/pegquest/internal/peg/emit"
)

const serveIssuer = "peggen"

// genRequest is the JSON body POST /generate accepts.
type genRequest struct {
	Grammar     string `json:"grammar"`
	Filename    string `json:"filename"`
	Mode        string `json:"mode"`
	SkipActions bool   `json:"skip_actions"`
}

type genResponse struct {
	Generated string `json:"generated"`
	RuleCount int    `json:"rule_count"`
}

type errResponse struct {
	Error string `json:"error"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// runServe starts a generation-as-a-service HTTP front end over the Driver
// pipeline: a chi.Router with Bearer-JWT middleware, using a single shared
// service secret rather than a per-user signing key, since peggen has no
// concept of user accounts to hash into the key.
func runServe(args []string) int {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	addr := fs.StringP("addr", "a", ":8980", "Address to listen on")
	secretHex := fs.String("secret", "", "Hex-encoded HMAC secret used to sign and validate Bearer tokens. Generated and printed once if omitted")
	issueToken := fs.Bool("issue-token", false, "Print a freshly signed Bearer token for the given (or generated) secret and exit without serving")
	historyDB := fs.String("history-db", "", "sqlite database file tracking generation history; disabled if empty")
	if err := fs.Parse(args); err != nil {
		return ExitIOError
	}

	secret, err := resolveServeSecret(*secretHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitIOError
	}

	if *issueToken {
		tok, err := signServeToken(secret)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return ExitIOError
		}
		fmt.Println(tok)
		return ExitSuccess
	}

	var hist *config.History
	if *historyDB != "" {
		hist, err = config.OpenHistory(*historyDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: opening history db: %s\n", err.Error())
			return ExitIOError
		}
		defer hist.Close()
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireBearer(secret))
		r.Post("/generate", handleGenerate)
		if hist != nil {
			r.Get("/history", handleHistory(hist))
		}
	})

	fmt.Fprintf(os.Stderr, "peggen serve: listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitIOError
	}
	return ExitSuccess
}

func resolveServeSecret(hexSecret string) ([]byte, error) {
	if hexSecret != "" {
		secret, err := hex.DecodeString(hexSecret)
		if err != nil {
			return nil, fmt.Errorf("decode --secret: %w", err)
		}
		return secret, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	fmt.Fprintf(os.Stderr, "no --secret given, generated one for this run: %s\n", hex.EncodeToString(secret))
	return secret, nil
}

func signServeToken(secret []byte) (string, error) {
	claims := &jwt.MapClaims{
		"iss": serveIssuer,
		"sub": "peggen-client",
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(secret)
}

// requireBearer validates an Authorization: Bearer <jwt> header signed with
// secret, the same HS512/issuer/leeway shape server/token.go's
// validateAndLookupJWTUser uses, minus the per-user database lookup peggen
// has no analogue for.
func requireBearer(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			authHeader := req.Header.Get("Authorization")
			const prefix = "Bearer "
			if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
				writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			tokStr := authHeader[len(prefix):]

			_, err := jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(serveIssuer), jwt.WithLeeway(time.Minute))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}

func handleGenerate(w http.ResponseWriter, req *http.Request) {
	var in genRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if in.Filename == "" {
		in.Filename = "<request>"
	}

	mode := emit.ModeTokenStream
	if in.Mode == "char" {
		mode = emit.ModeCharStream
	}

	d := pegquest.Driver{Emit: emit.Options{Mode: mode, SkipActions: in.SkipActions}}

	g, err := d.LoadGrammarSource(in.Grammar, in.Filename)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	generated, err := d.GenerateCodeString(g)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, genResponse{Generated: generated, RuleCount: len(g.Rules)})
}

func handleHistory(hist *config.History) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recs, err := hist.Recent(req.Context(), 50)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResponse{Error: msg})
}
