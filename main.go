package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/facebookgo/inject"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/authentication"
	"github.com/miguelfer1410/cdp-sub001/easypay"
	"github.com/miguelfer1410/cdp-sub001/families"
	"github.com/miguelfer1410/cdp-sub001/members"
	"github.com/miguelfer1410/cdp-sub001/payments"
	"github.com/miguelfer1410/cdp-sub001/quotas"
	. "github.com/miguelfer1410/cdp-sub001/shared"
	. "github.com/miguelfer1410/cdp-sub001/store"
	"github.com/miguelfer1410/cdp-sub001/store/migrations"
)

var (
	ctx             = context.Background()
	logger          = NewLogger("cdp-api")
	config          *AppConfig
	db              *gorm.DB
	stringGenerator = &StringGenerator{}

	memberService  = &members.MemberService{}
	familyService  = &families.FamilyService{}
	quotaService   = &quotas.QuotaService{}
	paymentService = &payments.PaymentService{}
	authService    = &authentication.AuthenticationService{}

	memberHandlerFactory  = &members.HandlerFactory{}
	familyHandlerFactory  = &families.HandlerFactory{}
	quotaHandlerFactory   = &quotas.HandlerFactory{}
	paymentHandlerFactory = &payments.HandlerFactory{}
	authHandlerFactory    = &authentication.HandlerFactory{}

	dbStore       = &Store{}
	easypayClient = &easypay.DefaultClient{}
	authenticator = &authentication.Authenticator{}
)

func init() {
	checkErrAndExit(initAppConfiguration())
	checkErrAndExit(initPostgresConnection())
	checkErrAndExit(initApplicationGraph())
}

func initAppConfiguration() (err error) {
	config, err = InitAppConfiguration()
	return
}

func initPostgresConnection() (err error) {
	connectString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.PgContactPoint,
		config.PgContactPort,
		config.PgUsername,
		config.PgPassword,
		config.PgDbName)
	db, err = gorm.Open("postgres", connectString)
	if err != nil {
		return
	}

	db.LogMode(true)
	db.SetLogger(logger)
	return
}

func initApplicationGraph() error {
	g := inject.Graph{}
	g.Provide(
		&inject.Object{Value: config},
		&inject.Object{Value: memberService},
		&inject.Object{Value: familyService},
		&inject.Object{Value: quotaService},
		&inject.Object{Value: paymentService},
		&inject.Object{Value: authService},
		&inject.Object{Value: memberHandlerFactory},
		&inject.Object{Value: familyHandlerFactory},
		&inject.Object{Value: quotaHandlerFactory},
		&inject.Object{Value: paymentHandlerFactory},
		&inject.Object{Value: authHandlerFactory},
		&inject.Object{Value: db},
		&inject.Object{Value: stringGenerator},
		&inject.Object{Value: dbStore},
		&inject.Object{Value: easypayClient},
		&inject.Object{Value: authenticator},
		&inject.Object{Value: logger},
	)
	if err := g.Populate(); err != nil {
		return errors.Wrap(err, "failed to populate")
	}
	return nil
}

func main() {
	if config.StartupMigration {
		applySqlSchemaMigrations(ctx)
	}
	startHttpServer(ctx)
}

func applySqlSchemaMigrations(ctx context.Context) {
	logger.Info(ctx, "applying sql schema migrations")
	migrationResult := migrations.Up(migrations.ApplyOptions{
		SourceURL: fmt.Sprintf("file://%s", config.SqlMigrationsSourceDir),
		DatabaseURL: fmt.Sprintf("postgres://%v:%v/%v?sslmode=disable&user=%s&password=%s",
			config.PgContactPoint, config.PgContactPort, config.PgDbName, config.PgUsername, config.PgPassword),
	})
	checkErrAndExit(migrationResult.Err)
	if !migrationResult.Changes {
		logger.Info(ctx, "no new migrations applied")
	}
}

func startHttpServer(ctx context.Context) {
	memberOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(members.EncodeError),
	}

	familyOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(families.EncodeError),
	}

	quotaOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(quotas.EncodeError),
	}

	paymentOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(payments.EncodeError),
	}

	authOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(authentication.EncodeError),
	}

	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	router.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	router.Handle("/auth/login", authHandlerFactory.Authenticate(authOpts)).Methods(http.MethodPost)
	router.Handle("/register", memberHandlerFactory.Register(memberOpts)).Methods(http.MethodPost)

	apiRouterV1 := router.PathPrefix("/api/v1").Subrouter()

	apiRouterV1.Handle("/members", authenticator.Roles(memberHandlerFactory.List(memberOpts), ROLE_ADMIN)).Methods(http.MethodGet)
	apiRouterV1.Handle("/members/{memberId}", authenticator.Roles(memberHandlerFactory.Get(memberOpts), ROLE_ADMIN, ROLE_MEMBER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/members/{memberId}", authenticator.Roles(memberHandlerFactory.Deactivate(memberOpts), ROLE_ADMIN)).Methods(http.MethodDelete)
	apiRouterV1.Handle("/members/{memberId}/review", authenticator.Roles(memberHandlerFactory.Review(memberOpts), ROLE_ADMIN)).Methods(http.MethodPost)

	apiRouterV1.Handle("/members/{memberId}/family", authenticator.Roles(familyHandlerFactory.List(familyOpts), ROLE_ADMIN, ROLE_MEMBER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/members/{memberId}/family", authenticator.Roles(familyHandlerFactory.Add(familyOpts), ROLE_ADMIN)).Methods(http.MethodPost)
	apiRouterV1.Handle("/family-links/{linkId}", authenticator.Roles(familyHandlerFactory.Remove(familyOpts), ROLE_ADMIN)).Methods(http.MethodDelete)
	apiRouterV1.Handle("/families/alias-groups", authenticator.Roles(familyHandlerFactory.AliasGroups(familyOpts), ROLE_ADMIN)).Methods(http.MethodGet)

	apiRouterV1.Handle("/members/{memberId}/due", authenticator.Roles(quotaHandlerFactory.GetDue(quotaOpts), ROLE_ADMIN, ROLE_MEMBER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/fees", authenticator.Roles(quotaHandlerFactory.ListFees(quotaOpts), ROLE_ADMIN)).Methods(http.MethodGet)
	apiRouterV1.Handle("/fees/global", authenticator.Roles(quotaHandlerFactory.UpdateGlobalFees(quotaOpts), ROLE_ADMIN)).Methods(http.MethodPatch)
	apiRouterV1.Handle("/fees/sports/{sportId}", authenticator.Roles(quotaHandlerFactory.UpdateSportFees(quotaOpts), ROLE_ADMIN)).Methods(http.MethodPatch)

	apiRouterV1.Handle("/members/{memberId}/payments/mb", authenticator.Roles(paymentHandlerFactory.IssueReference(paymentOpts), ROLE_ADMIN, ROLE_MEMBER)).Methods(http.MethodPost)
	apiRouterV1.Handle("/payments/{paymentId}/status", authenticator.Roles(paymentHandlerFactory.CheckStatus(paymentOpts), ROLE_ADMIN, ROLE_MEMBER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/members/{memberId}/payments/manual", authenticator.Roles(paymentHandlerFactory.RecordManualPayment(paymentOpts), ROLE_ADMIN)).Methods(http.MethodPost)
	apiRouterV1.Handle("/members/{memberId}/payments/summary", authenticator.Roles(paymentHandlerFactory.GetSummary(paymentOpts), ROLE_ADMIN, ROLE_MEMBER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/members/{memberId}/payments", authenticator.Roles(paymentHandlerFactory.GetHistory(paymentOpts), ROLE_ADMIN, ROLE_MEMBER)).Methods(http.MethodGet)

	checkErrAndExit(http.ListenAndServe(config.ListenAddress,
		logger.RequestLoggerMiddleware(router),
	))
}

func checkErrAndExit(err error) {
	if err == nil {
		return
	}
	fmt.Println(err.Error())
	os.Exit(1)
}
