package metrics

import (
	"context"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "SFX/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// putMetricDataAPI is the subset of the CloudWatch client we call.
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      putMetricDataAPI
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client. It is active in
// production or when explicitly forced on.
func NewClient(ctx context.Context, environment string, force bool) *Client {
	if environment != "production" && !force {
		logger.Info("CloudWatch metrics disabled", logger.Fields{"environment": environment})
		return &Client{
			enabled:     false,
			environment: environment,
		}
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Warn("Failed to load AWS config for CloudWatch", logger.Fields{"error": err.Error()})
		return &Client{enabled: false, environment: environment}
	}

	logger.Info("CloudWatch metrics enabled", logger.Fields{"namespace": namespace})

	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
	}
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}

		dimensions := m.dimensions("Endpoint", endpoint)
		m.put(metricName, 1, types.StandardUnitCount, dimensions)
		m.put("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
	}()
}

// RecordTokenUsage records inference token usage
func (m *Client) RecordTokenUsage(model string, totalTokens, inputTokens, outputTokens int) {
	if !m.enabled {
		return
	}

	go func() {
		dimensions := m.dimensions("Model", model)
		m.put("InferenceTokens/Total", float64(totalTokens), types.StandardUnitCount, dimensions)
		m.put("InferenceTokens/Input", float64(inputTokens), types.StandardUnitCount, dimensions)
		m.put("InferenceTokens/Output", float64(outputTokens), types.StandardUnitCount, dimensions)
	}()
}

// RecordGeneration records one pipeline run (generate, variation)
func (m *Client) RecordGeneration(kind string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	go func() {
		dimensions := append(m.dimensions("Kind", kind), types.Dimension{
			Name:  aws.String("Success"),
			Value: aws.String(boolToString(success)),
		})
		m.put("SfxGenerations", 1, types.StandardUnitCount, dimensions)
		m.put("SfxGenerationDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
	}()
}

// RecordPollAttempts records how many result polls a job needed
func (m *Client) RecordPollAttempts(attempts int, outcome string) {
	if !m.enabled {
		return
	}

	go func() {
		m.put("SoundrawPollAttempts", float64(attempts), types.StandardUnitCount, m.dimensions("Outcome", outcome))
	}()
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

func (m *Client) put(metricName string, value float64, unit types.StandardUnit, dimensions []types.Dimension) {
	if err := m.putMetric(metricName, value, unit, dimensions); err != nil {
		logger.Warn("Failed to record CloudWatch metric", logger.Fields{
			"metric": metricName,
			"error":  err.Error(),
		})
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	// Detached from the request; metrics must not fail or slow callers
	cwCtx, cancel := context.WithTimeout(context.Background(), cloudwatchTimeoutSeconds*time.Second)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
