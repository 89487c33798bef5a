package routes

import (
	_ "fieldserve/docs" // This will be auto-generated
	"fieldserve/internal/adapter/http/handlers"
	repository2 "fieldserve/internal/adapter/persistence/repository"
	"fieldserve/internal/infrastructure/database"
	"fieldserve/internal/infrastructure/payments"
	"fieldserve/internal/usecase"
	"fieldserve/internal/usecase/interfaces"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const PORT = 8080

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()

	jobRepo := repository2.NewJobDynamoRepository(ddb)
	invoiceRepo := repository2.NewInvoiceDynamoRepository(ddb)
	paymentRepo := repository2.NewPaymentDynamoRepository(ddb)

	// One guard instance: lifecycle commits and partial invoicing must
	// serialize against each other per job.
	inflight := usecase.NewInflightGuard()

	lifecycleUseCase := usecase.NewJobLifecycleUseCase(jobRepo, invoiceRepo, inflight)
	jobUseCase := usecase.NewJobUseCase(jobRepo)
	invoiceUseCase := usecase.NewInvoiceUseCase(invoiceRepo, jobRepo, inflight)

	var paymentGateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(os.Getenv("MERCADOPAGO_ACCESS_TOKEN"))
	if err != nil {
		log.Printf("Mercado Pago gateway not configured: %v", err)
	} else {
		paymentGateway = mpGateway
	}

	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, invoiceRepo, paymentGateway, lifecycleUseCase)

	jobHandler := handlers.NewJobHandler(jobUseCase)
	lifecycleHandler := handlers.NewJobLifecycleHandler(lifecycleUseCase)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceUseCase)
	paymentHandler := handlers.NewPaymentHandler(paymentUseCase)

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addJobRoutes(v1, jobHandler, lifecycleHandler, invoiceHandler)
	addBillingRoutes(v1, invoiceHandler, paymentHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
