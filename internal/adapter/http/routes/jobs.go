package routes

import (
	"fieldserve/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathJobs = "/jobs"
)

func addJobRoutes(rg *gin.RouterGroup, jobHandler *handlers.JobHandler, lifecycleHandler *handlers.JobLifecycleHandler, invoiceHandler *handlers.InvoiceHandler) {
	jobs := rg.Group(PathJobs)
	{
		jobs.POST("", jobHandler.CreateJob)
		jobs.GET("/:job_id", jobHandler.GetJob)

		// Two-phase lifecycle protocol.
		jobs.POST("/:job_id/transitions", lifecycleHandler.RequestTransition)
		jobs.POST("/:job_id/transitions/commit", lifecycleHandler.CommitTransition)

		// Invoice ledger scoped to a job.
		jobs.POST("/:job_id/deposits", invoiceHandler.CreateDeposit)
		jobs.POST("/:job_id/partial-invoices", invoiceHandler.CreatePartial)
		jobs.GET("/:job_id/invoices", invoiceHandler.ListInvoicesByJob)
	}
}
