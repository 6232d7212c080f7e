package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/x/conv"
)

// ZapObserver logs driver protocol events. Frame rejects and bus errors go
// out at warn; everything else at debug.
type ZapObserver struct {
	L *zap.Logger
}

var _ bq28z610.Observer = ZapObserver{}

func (o ZapObserver) Observe(e bq28z610.Event) {
	lvl := zapcore.DebugLevel
	if e.Kind == bq28z610.EventFrameReject || e.Kind == bq28z610.EventBusError {
		lvl = zapcore.WarnLevel
	}
	ce := o.L.Check(lvl, e.Kind.String())
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, 4)
	switch e.Kind {
	case bq28z610.EventCommand, bq28z610.EventWrite, bq28z610.EventBusError:
		fields = append(fields, zap.String("reg", string(conv.U8Hex([]byte("0x"), e.Reg))))
	}
	if e.Sub != 0 {
		fields = append(fields, zap.String("sub", string(conv.U16Hex(nil, e.Sub))))
	}
	if len(e.Data) > 0 {
		// Data aliases driver buffers; format it now.
		fields = append(fields, zap.String("data", string(conv.BytesHex(nil, e.Data))))
	}
	if e.Delay > 0 {
		fields = append(fields, zap.Duration("delay", e.Delay))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	ce.Write(fields...)
}
