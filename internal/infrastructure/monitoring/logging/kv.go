package logging

// KVLogger is the loosely-typed logging contract the application services
// depend on.  Keys and values alternate, sugared-logger style.
type KVLogger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// KV adapts a Field-based Logger to the KVLogger contract.  A trailing key
// without a value is logged under the "EXTRA" key rather than dropped.
func KV(l Logger) KVLogger {
	if l == nil {
		l = NewNopLogger()
	}
	return kvAdapter{inner: l}
}

type kvAdapter struct {
	inner Logger
}

func (a kvAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.inner.Debug(msg, pairFields(keysAndValues)...)
}

func (a kvAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.inner.Info(msg, pairFields(keysAndValues)...)
}

func (a kvAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.inner.Warn(msg, pairFields(keysAndValues)...)
}

func (a kvAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.inner.Error(msg, pairFields(keysAndValues)...)
}

func pairFields(kvs []interface{}) []Field {
	fields := make([]Field, 0, (len(kvs)+1)/2)
	for i := 0; i < len(kvs); i += 2 {
		if i+1 >= len(kvs) {
			fields = append(fields, Any("EXTRA", kvs[i]))
			break
		}
		key, ok := kvs[i].(string)
		if !ok {
			fields = append(fields, Any("EXTRA", kvs[i]), Any("EXTRA_VALUE", kvs[i+1]))
			continue
		}
		fields = append(fields, Any(key, kvs[i+1]))
	}
	return fields
}
