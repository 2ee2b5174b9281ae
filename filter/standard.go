package filter

// Standard filters, built once and shared by every operation module that
// needs them. Offsets follow the convention that 0 is the topmost stack
// value, 1 the one beneath it.
var (
	TopPresent      = New().IsPresent(0).Build()
	TopNumber       = New().Is(0, TagNumber).Build()
	TopLong         = New().IsLong(0).Build()
	TopBoolean      = New().Is(0, TagBool).Build()
	TopString       = New().Is(0, TagText).Build()
	TopState        = New().Is(0, TagState).Build()
	TopObject       = New().Is(0, TagObject).Build()
	TopContainer    = New().Is(0, TagContainer).Build()
	TopBigDecimal   = New().Is(0, TagBigDecimal).Build()

	BothNumber  = New().Is(0, TagNumber).Is(1, TagNumber).And().Build()
	BothLong    = New().IsLong(0).IsLong(1).And().Build()
	BothString  = New().Is(0, TagText).Is(1, TagText).And().Build()
	BothObject  = New().Is(0, TagObject).Is(1, TagObject).And().Build()
	BothPresent = New().IsPresent(0).IsPresent(1).And().Build()

	EitherBigDecimal = New().Is(0, TagBigDecimal).Is(1, TagBigDecimal).Or().Build()

	TopLongBigDecimal = New().IsLong(0).Is(0, TagBigDecimal).Or().Build()
)
