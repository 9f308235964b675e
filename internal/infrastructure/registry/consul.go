package registry

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/Kingsley-codes/we-listen/config"

	"github.com/hashicorp/consul/api"
)

type ConsulRegistry struct {
	client *api.Client
}

type ServiceConfig struct {
	ID          string
	Name        string
	Tags        []string
	Address     string
	Port        int
	HealthCheck *HealthCheck
}

type HealthCheck struct {
	HTTP                           string
	Interval                       time.Duration
	Timeout                        time.Duration
	DeregisterCriticalServiceAfter time.Duration
}

func NewConsulRegistry(cfg *config.ConsulConfig) (*ConsulRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Address
	consulConfig.Scheme = cfg.Scheme
	consulConfig.Datacenter = cfg.Datacenter

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	if _, err = client.Status().Leader(); err != nil {
		return nil, fmt.Errorf("connect consul: %w", err)
	}
	log.Printf("consul connected: %s", cfg.Address)
	return &ConsulRegistry{client: client}, nil
}

func (r *ConsulRegistry) RegisterService(cfg *ServiceConfig) error {
	registration := &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Tags:    cfg.Tags,
		Address: cfg.Address,
		Port:    cfg.Port,
	}
	if cfg.HealthCheck != nil {
		registration.Check = &api.AgentServiceCheck{
			HTTP:                           cfg.HealthCheck.HTTP,
			Interval:                       cfg.HealthCheck.Interval.String(),
			Timeout:                        cfg.HealthCheck.Timeout.String(),
			DeregisterCriticalServiceAfter: cfg.HealthCheck.DeregisterCriticalServiceAfter.String(),
		}
	}

	if err := r.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("register service: %w", err)
	}
	log.Printf("service registered: %s (ID: %s)", cfg.Name, cfg.ID)
	return nil
}

func (r *ConsulRegistry) DeregisterService(serviceID string) error {
	if err := r.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("deregister service: %w", err)
	}
	log.Printf("service deregistered: %s", serviceID)
	return nil
}

// GetLocalIP reports the outbound interface address.
func GetLocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

func GenerateServiceID(serviceName string, port int) string {
	ip, _ := GetLocalIP()
	return fmt.Sprintf("%s-%s-%d", serviceName, ip, port)
}
