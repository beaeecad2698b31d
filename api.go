package main

import (
	"github.com/fasorail/recharges/resource"
	"github.com/yarf-framework/yarf"
)

// telemetryMiddleware reports every API request to the StatsSender
type telemetryMiddleware struct {
	yarf.Middleware
}

// PreDispatch counts the request without ever blocking it
func (m *telemetryMiddleware) PreDispatch(c *yarf.Context) error {
	select {
	case APIrequestTelemetry <- true:
	default:
	}
	return nil
}

// APIserver starts the REST API server
func APIserver() {
	y := yarf.New()

	deps := resource.Dependencies{
		Node:     rootSqalxNode,
		Sessions: sessionStore,
		Stats:    statsHandler,
	}

	api := yarf.RouteGroup("/api")
	api.Insert(new(telemetryMiddleware))

	api.Add("/auth/:action", new(resource.Auth).WithDependencies(deps).WithTelemetryChannel(LoginTelemetry))

	api.Add("/zones", new(resource.Zone).WithDependencies(deps))
	api.Add("/zones/:id", new(resource.Zone).WithDependencies(deps))

	api.Add("/agencies", new(resource.Agency).WithDependencies(deps))
	api.Add("/agencies/:id", new(resource.Agency).WithDependencies(deps))

	api.Add("/gares", new(resource.Gare).WithDependencies(deps))
	api.Add("/gares/:id", new(resource.Gare).WithDependencies(deps))

	api.Add("/connections", new(resource.Connection).WithDependencies(deps))
	api.Add("/connections/:id", new(resource.Connection).WithDependencies(deps))

	api.Add("/recharges", new(resource.Recharge).WithDependencies(deps))
	api.Add("/recharges/:id", new(resource.Recharge).WithDependencies(deps))

	api.Add("/alerts", new(resource.Alert).WithDependencies(deps))
	api.Add("/alerts/:id/:action", new(resource.Alert).WithDependencies(deps))

	api.Add("/reports/:kind/:id", new(resource.Report).WithDependencies(deps))
	api.Add("/reports/:kind/:id/:format", new(resource.Report).WithDependencies(deps))

	api.Add("/dashboard/stats", new(resource.Dashboard).WithDependencies(deps))

	y.AddGroup(api)

	y.Logger = apiLog
	apiLog.Println("Starting API server on", APIlistenAddress)
	y.Start(APIlistenAddress)
}
