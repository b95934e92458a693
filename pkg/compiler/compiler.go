package compiler

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/message-compiler/pkg/metrics"
	"github.com/code-payments/message-compiler/pkg/solana"
)

const (
	metricsStructName = "compiler.Compiler"

	messageSizeMetricName  = "MessageCompiler/MessageSize"
	accountCountMetricName = "MessageCompiler/AccountCount"
)

// Compiler compiles and encodes messages under a policy resolved from config
// on every call. It holds no per-call state and is safe for concurrent use.
type Compiler struct {
	log  *logrus.Entry
	conf *conf
}

func New(configProvider ConfigProvider) *Compiler {
	return &Compiler{
		log:  logrus.StandardLogger().WithField("type", "compiler/Compiler"),
		conf: configProvider(),
	}
}

// Policy resolves the currently configured policy.
func (c *Compiler) Policy(ctx context.Context) (solana.Policy, error) {
	policy, err := solana.PolicyByName(c.conf.policy.Get(ctx))
	if err != nil {
		return solana.Policy{}, err
	}

	keyOrder, err := solana.KeyOrderFromString(c.conf.keyOrder.Get(ctx))
	if err != nil {
		return solana.Policy{}, err
	}
	policy.KeyOrder = keyOrder

	if maxMessageSize := c.conf.maxMessageSize.Get(ctx); maxMessageSize > 0 {
		policy.MaxMessageSize = int(maxMessageSize)
	}
	policy.PartialHeader = c.conf.partialHeader.Get(ctx)

	return policy, nil
}

// Compile compiles instructions into a message paid for by payer.
func (c *Compiler) Compile(ctx context.Context, payer ed25519.PublicKey, bh solana.Blockhash, instructions ...solana.Instruction) (solana.Message, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Compile")
	defer tracer.End()

	log := c.log.WithFields(logrus.Fields{
		"method":       "Compile",
		"instructions": len(instructions),
	})
	if len(payer) > 0 {
		log = log.WithField("payer", base58.Encode(payer))
	}

	policy, err := c.Policy(ctx)
	if err != nil {
		log.WithError(err).Warn("failure resolving policy")
		tracer.OnError(err)
		return solana.Message{}, err
	}

	m, err := policy.Compile(payer, bh, instructions...)
	if err != nil {
		if errors.Is(err, solana.ErrUnresolvedAccountIndex) {
			log.WithError(err).Error("compiled account list is out of sync with instructions")
		} else {
			log.WithError(err).Debug("failure compiling message")
		}
		tracer.OnError(err)
		return solana.Message{}, err
	}

	tracer.AddAttribute("accounts", len(m.Accounts))
	metrics.RecordCount(ctx, accountCountMetricName, uint64(len(m.Accounts)))

	return m, nil
}

// Serialize encodes m in full mode.
func (c *Compiler) Serialize(ctx context.Context, m solana.Message) ([]byte, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Serialize")
	defer tracer.End()

	policy, err := c.Policy(ctx)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	encoded, err := policy.Marshal(m)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"method": "Serialize",
			"policy": policy.Name,
			"size":   m.Size(),
		}).Debug("failure serializing message")
		tracer.OnError(err)
		return nil, err
	}

	metrics.RecordCount(ctx, messageSizeMetricName, uint64(len(encoded)))
	return encoded, nil
}

// SerializePartial encodes m for a signer that only knows the first numKnown
// accounts.
func (c *Compiler) SerializePartial(ctx context.Context, m solana.Message, numKnown int) (*solana.PartialMessage, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "SerializePartial")
	defer tracer.End()

	policy, err := c.Policy(ctx)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	partial, err := policy.MarshalPartial(m, numKnown)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"method":    "SerializePartial",
			"policy":    policy.Name,
			"num_known": numKnown,
		}).Debug("failure serializing partial message")
		tracer.OnError(err)
		return nil, err
	}

	tracer.AddAttribute("elided", partial.NumUnRequiredAccounts)
	return partial, nil
}

// Deserialize decodes a full mode message.
func (c *Compiler) Deserialize(ctx context.Context, b []byte) (solana.Message, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Deserialize")
	defer tracer.End()

	var m solana.Message
	if err := m.Unmarshal(b); err != nil {
		tracer.OnError(err)
		return solana.Message{}, err
	}
	return m, nil
}

// Reconstruct rebuilds the full mode encoding of a partial message.
func (c *Compiler) Reconstruct(ctx context.Context, partial *solana.PartialMessage, header solana.Header, elided []ed25519.PublicKey) ([]byte, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Reconstruct")
	defer tracer.End()

	encoded, err := partial.Reconstruct(header, elided)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return encoded, nil
}
