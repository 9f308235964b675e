package registry

import (
	"fmt"
	"log"
	"time"

	"github.com/Kingsley-codes/we-listen/config"
)

// ServiceManager registers the running process with consul and
// deregisters it again on shutdown.
type ServiceManager struct {
	registry  *ConsulRegistry
	serviceID string
}

func NewServiceManager(cfg *config.ConsulConfig, serviceName string, port int) (*ServiceManager, error) {
	registry, err := NewConsulRegistry(cfg)
	if err != nil {
		return nil, err
	}

	ip, err := GetLocalIP()
	if err != nil {
		log.Printf("resolve local IP failed, falling back to localhost: %v", err)
		ip = "127.0.0.1"
	}

	serviceID := GenerateServiceID(serviceName, port)
	serviceConfig := &ServiceConfig{
		ID:      serviceID,
		Name:    serviceName,
		Tags:    []string{serviceName, "v1"},
		Address: ip,
		Port:    port,
		HealthCheck: &HealthCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", ip, port),
			Interval:                       10 * time.Second,
			Timeout:                        3 * time.Second,
			DeregisterCriticalServiceAfter: 30 * time.Second,
		},
	}

	if err := registry.RegisterService(serviceConfig); err != nil {
		return nil, err
	}

	return &ServiceManager{registry: registry, serviceID: serviceID}, nil
}

// Stop deregisters the service. Safe to call once during shutdown.
func (m *ServiceManager) Stop() {
	if err := m.registry.DeregisterService(m.serviceID); err != nil {
		log.Printf("deregister failed: %v", err)
	}
}
