// Package ml implements the regression pipelines used to price listings.
//
// A Pipeline chains a ColumnTransformer (imputation, scaling and one-hot
// encoding) with a tree ensemble: a bootstrap random forest fitted on
// log1p(price), or stochastic gradient boosting fitted on the raw price.
// Trees are CART regressors grown on histogram-binned features.
//
// Fitting is deterministic for a given seed and input order.
package ml
